package origin

import (
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want, host string
		ok             bool
	}{
		{"https://Example.com", "https://example.com", "example.com", true},
		{"https://example.com:443", "https://example.com", "example.com", true},
		{"http://example.com:80/", "http://example.com", "example.com", true},
		{"http://localhost:3000", "http://localhost:3000", "localhost:3000", true},
		{"http://[::1]:8080", "http://[::1]:8080", "[::1]:8080", true},
		{"ftp://example.com", "", "", false},
		{"https://example.com/app", "", "", false},
		{"https://user@example.com", "", "", false},
		{"example.com", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, host, ok := Normalize(tc.in)
			if ok != tc.ok || got != tc.want || host != tc.host {
				t.Fatalf("Normalize(%q)=(%q,%q,%v), want (%q,%q,%v)", tc.in, got, host, ok, tc.want, tc.host, tc.ok)
			}
		})
	}
}

func TestPolicyAllowed(t *testing.T) {
	p, err := NewPolicy([]string{"https://app.example.com", " http://localhost:3000 "})
	if err != nil {
		t.Fatal(err)
	}
	for origin, want := range map[string]bool{
		"https://app.example.com":     true,
		"https://app.example.com:443": true,
		"http://localhost:3000":       true,
		"http://localhost:3001":       false,
		"https://evil.example.com":    false,
		"null":                        false,
	} {
		if got := p.Allowed(origin); got != want {
			t.Fatalf("Allowed(%q)=%v, want %v", origin, got, want)
		}
	}
}

func TestPolicyWildcard(t *testing.T) {
	p, err := NewPolicy([]string{"*"})
	if err != nil {
		t.Fatal(err)
	}
	if !p.AllowsAny() || !p.Allowed("https://anything.test") {
		t.Fatalf("wildcard did not admit origin")
	}
}

func TestNewPolicyRejectsGarbage(t *testing.T) {
	if _, err := NewPolicy([]string{"not an origin"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCheckRequest(t *testing.T) {
	listed, _ := NewPolicy([]string{"https://app.example.com"})
	sameHost, _ := NewPolicy(nil)

	cases := []struct {
		name   string
		p      *Policy
		host   string
		origin string
		want   bool
	}{
		{"no origin header", listed, "ws.example.com", "", true},
		{"listed", listed, "ws.example.com", "https://app.example.com", true},
		{"not listed", listed, "ws.example.com", "https://other.example.com", false},
		{"same host", sameHost, "example.com:5000", "http://example.com:5000", true},
		{"same host default port", sameHost, "example.com", "https://example.com", true},
		{"other host", sameHost, "example.com:5000", "http://evil.test:5000", false},
		{"malformed", sameHost, "example.com", "::", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			r.Host = tc.host
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			if got := tc.p.CheckRequest(r); got != tc.want {
				t.Fatalf("CheckRequest(host=%q, origin=%q)=%v, want %v", tc.host, tc.origin, got, tc.want)
			}
		})
	}
}
