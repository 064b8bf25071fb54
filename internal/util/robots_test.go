package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_Allowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("factseek/0.1", 5*time.Second)

	if !checker.Allowed(context.Background(), server.URL+"/public/page") {
		t.Error("Expected public path allowed")
	}
	if checker.Allowed(context.Background(), server.URL+"/private/page") {
		t.Error("Expected private path disallowed")
	}
}

func TestRobotsChecker_SpecificAgentRule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: factseek\nDisallow: /\n\nUser-agent: *\nDisallow:\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("factseek/0.1 (+https://github.com/factseek/factseek)", 5*time.Second)

	if checker.Allowed(context.Background(), server.URL+"/anything") {
		t.Error("Expected agent-specific disallow to apply to the product token")
	}
}

func TestRobotsChecker_UnreachableAllowsByDefault(t *testing.T) {
	checker := NewRobotsChecker("factseek/0.1", 500*time.Millisecond)

	if !checker.Allowed(context.Background(), "http://127.0.0.1:1/page") {
		t.Error("Expected unreadable robots.txt to allow by default")
	}
}

func TestRobotsChecker_CachesPerHost(t *testing.T) {
	var fetches int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt64(&fetches, 1)
		}
		fmt.Fprint(w, "User-agent: *\nDisallow:\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("factseek/0.1", 5*time.Second)

	for i := 0; i < 5; i++ {
		checker.Allowed(context.Background(), fmt.Sprintf("%s/page/%d", server.URL, i))
	}
	if fetches != 1 {
		t.Errorf("Expected a single robots.txt fetch per host, got %d", fetches)
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("factseek/0.1", time.Second)
	if checker.Allowed(context.Background(), "://bad url") {
		t.Error("Expected unparseable URL rejected")
	}
}
