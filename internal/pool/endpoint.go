package pool

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const defaultPort = 9200

// Endpoint identifies one cluster entry point. Immutable once parsed.
type Endpoint struct {
	Host   string
	Port   int
	Secure bool
}

// URL returns the base URL for this endpoint.
func (e Endpoint) URL() string {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(e.Host, strconv.Itoa(e.Port)))
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseEndpoints splits a comma-separated endpoint list into Endpoints,
// preserving order. Each entry is [http[s]://]host[:port]; an explicit
// scheme overrides useSSL for that entry, and the port defaults to 9200.
func ParseEndpoints(eaddr string, useSSL bool) ([]Endpoint, error) {
	if strings.TrimSpace(eaddr) == "" {
		return nil, fmt.Errorf("endpoint list is empty")
	}

	var endpoints []Endpoint
	for _, entry := range strings.Split(eaddr, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		secure := useSSL
		switch {
		case strings.HasPrefix(entry, "https://"):
			secure = true
			entry = strings.TrimPrefix(entry, "https://")
		case strings.HasPrefix(entry, "http://"):
			secure = false
			entry = strings.TrimPrefix(entry, "http://")
		}
		entry = strings.TrimSuffix(entry, "/")

		host := entry
		port := defaultPort
		if h, p, err := net.SplitHostPort(entry); err == nil {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > 65535 {
				return nil, fmt.Errorf("invalid port in endpoint %q", entry)
			}
			host, port = h, n
		}
		if host == "" {
			return nil, fmt.Errorf("invalid endpoint %q: host is required", entry)
		}

		endpoints = append(endpoints, Endpoint{Host: host, Port: port, Secure: secure})
	}

	if len(endpoints) == 0 {
		return nil, fmt.Errorf("endpoint list is empty")
	}
	return endpoints, nil
}
