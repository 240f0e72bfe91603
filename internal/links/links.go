// Package links resolves candidate detail-page links before events are built.
//
// Some source sites publish a per-stage detail page at a guessable URL without
// linking to it from the schedule. The resolver probes candidates with an HTTP
// HEAD request; a candidate that does not exist simply yields no link. Event
// construction itself stays side-effect free — resolution happens in the
// adapters before the event values are created.
package links

import (
	"net/http"
	"time"
)

const probeTimeout = 10 * time.Second

// Resolver decides whether a candidate URL should be embedded in an event
// description. Resolve returns the URL when it exists and "" otherwise;
// probe failures are never fatal, they just mean "no link".
type Resolver interface {
	Resolve(url string) string
}

// HTTPResolver probes candidates with HTTP HEAD requests.
type HTTPResolver struct {
	client *http.Client
}

// NewHTTPResolver creates a resolver with a probe timeout.
func NewHTTPResolver() *HTTPResolver {
	return &HTTPResolver{
		client: &http.Client{
			Timeout: probeTimeout,
		},
	}
}

// Resolve returns url when a HEAD request answers 200 OK, otherwise "".
func (r *HTTPResolver) Resolve(url string) string {
	if url == "" {
		return ""
	}

	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	return url
}

// Nop is a resolver that never yields a link. It disables probing in tests
// and in runs where the network round-trips are not wanted.
type Nop struct{}

func (Nop) Resolve(string) string { return "" }

// First returns the first candidate the resolver confirms, or "".
func First(r Resolver, candidates ...string) string {
	for _, candidate := range candidates {
		if url := r.Resolve(candidate); url != "" {
			return url
		}
	}
	return ""
}
