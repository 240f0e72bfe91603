package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != UserAgent {
			t.Errorf("User-Agent = %q, want %q", got, UserAgent)
		}
		w.Write([]byte(`<html><body><table id="list"><tr><th>第1戦</th></tr></table></body></html>`))
	}))
	defer server.Close()

	client := New()
	doc, err := client.Document(server.URL)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}

	if got := doc.Find("table#list th").Text(); got != "第1戦" {
		t.Errorf("parsed document text = %q, want %q", got, "第1戦")
	}
}

func TestDocument_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New()
	if _, err := client.Document(server.URL); err == nil {
		t.Error("Document() should error on non-200 status")
	}
}

func TestDocument_UnreachableHost(t *testing.T) {
	client := New()
	if _, err := client.Document("http://127.0.0.1:0/"); err == nil {
		t.Error("Document() should error on unreachable host")
	}
}
