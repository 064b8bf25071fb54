package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/factseek/factseek/internal/util"
)

const scraperEndpoint = "https://html.duckduckgo.com/html/"

// scraperMaxResults caps scraped hits regardless of what the caller asks for;
// scraping is the lowest-precision backend and politeness matters more than
// recall here.
const scraperMaxResults = 5

// ScraperProvider is the last-resort backend: it scrapes the DuckDuckGo HTML
// endpoint. Requests are robots.txt-gated and paced with a token bucket so a
// burst of concurrent claims cannot hammer the host.
type ScraperProvider struct {
	endpoint  string
	client    *http.Client
	userAgent string
	robots    *util.RobotsChecker
	limiter   *rate.Limiter
}

// NewScraperProvider creates the scraping adapter
func NewScraperProvider(userAgent string, timeout time.Duration) *ScraperProvider {
	return &ScraperProvider{
		endpoint:  scraperEndpoint,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		robots:    util.NewRobotsChecker(userAgent, timeout),
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (p *ScraperProvider) Name() string {
	return "scraper"
}

// Search scrapes one results page and parses the organic links
func (p *ScraperProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults > scraperMaxResults {
		maxResults = scraperMaxResults
	}

	target := p.endpoint + "?" + url.Values{"q": {query}}.Encode()
	if !p.robots.Allowed(ctx, target) {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnauthorized, Err: fmt.Errorf("disallowed by robots.txt")}
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindUnreachable, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: p.Name(),
			Kind:     classifyStatus(resp.StatusCode),
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Kind: KindMalformed, Err: err}
	}

	return parseScrapedResults(doc, maxResults), nil
}

// parseScrapedResults walks the result page looking for result blocks:
// anchors classed result__a (title+link) and snippets classed result__snippet.
func parseScrapedResults(doc *html.Node, maxResults int) []Result {
	var results []Result
	var current *Result

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults && current == nil {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if current != nil {
					results = append(results, *current)
				}
				current = &Result{
					Title: nodeText(n),
					URL:   cleanScrapedURL(attrValue(n, "href")),
				}
			case hasClass(n, "result__snippet"):
				if current != nil {
					current.Snippet = nodeText(n)
					if current.URL != "" {
						results = append(results, *current)
					}
					current = nil
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && current.URL != "" && len(results) < maxResults {
		results = append(results, *current)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// cleanScrapedURL unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=...)
func cleanScrapedURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attrValue(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates the text nodes under n
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
