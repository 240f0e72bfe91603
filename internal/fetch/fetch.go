// Package fetch retrieves schedule pages and hands back parsed HTML documents.
//
// This is the boundary between the network and the adapters: adapters never
// see raw bytes, only goquery node handles located in the returned document.
package fetch

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	UserAgent = "darts-calendars/1.0 (github.com/pfrederiksen/darts-calendars)"
	Timeout   = 30 * time.Second
)

// Client fetches and parses schedule pages
type Client struct {
	client *http.Client
}

// New creates a new Client instance
func New() *Client {
	return &Client{
		client: &http.Client{
			Timeout: Timeout,
		},
	}
}

// Document fetches url and parses the response body into a goquery document.
func (c *Client) Document(url string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
