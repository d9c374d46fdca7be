// Package origin decides which browser origins may open connections.
package origin

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Policy is an origin allow-list. "*" admits every origin; an empty list
// admits only origins on the same host as the request.
type Policy struct {
	any     bool
	allowed map[string]struct{}
}

func NewPolicy(origins []string) (*Policy, error) {
	p := &Policy{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		switch o {
		case "":
			continue
		case "*":
			p.any = true
			continue
		}
		n, _, ok := Normalize(o)
		if !ok {
			return nil, fmt.Errorf("invalid origin %q", o)
		}
		p.allowed[n] = struct{}{}
	}
	return p, nil
}

func (p *Policy) AllowsAny() bool { return p.any }

// Allowed reports whether a cross-origin request from origin is admitted.
func (p *Policy) Allowed(origin string) bool {
	if p.any {
		return true
	}
	n, _, ok := Normalize(origin)
	if !ok {
		return false
	}
	_, ok = p.allowed[n]
	return ok
}

// CheckRequest is a websocket upgrade check. Requests without an Origin
// header come from non-browser clients and are admitted.
func (p *Policy) CheckRequest(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if header == "" || p.any {
		return true
	}
	n, host, ok := Normalize(header)
	if !ok {
		return false
	}
	if len(p.allowed) > 0 {
		_, ok := p.allowed[n]
		return ok
	}
	scheme, _, _ := strings.Cut(n, "://")
	return host == normalizeHost(r.Host, scheme)
}

// Normalize returns scheme://host[:port] with the default port dropped, and
// the host[:port] part on its own.
func Normalize(origin string) (normalized, host string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", "", false
	}
	if u.Path != "" && u.Path != "/" {
		return "", "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", "", false
	}
	host = normalizeHost(u.Host, scheme)
	if host == "" {
		return "", "", false
	}
	return scheme + "://" + host, host, true
}

func normalizeHost(hostport, scheme string) string {
	hostport = strings.ToLower(strings.TrimSpace(hostport))
	hostname, port, err := net.SplitHostPort(hostport)
	if err != nil {
		hostname, port = strings.Trim(hostport, "[]"), ""
	}
	if hostname == "" {
		return ""
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port == "" {
		if strings.Contains(hostname, ":") {
			return "[" + hostname + "]"
		}
		return hostname
	}
	return net.JoinHostPort(hostname, port)
}
