package siteforge

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Backend is the fetch/update pair an editor session talks to. An endpoint
// is an opaque string: a section key for the built-in store, a URL for a
// remote REST backend. Update replaces server-side state wholesale and
// returns the persisted document (last writer wins, no merge).
type Backend interface {
	Fetch(ctx context.Context, endpoint string) (Document, error)
	Update(ctx context.Context, endpoint string, doc Document) (Document, error)
}

// StoreBackend serves sessions straight from the local SectionStore. The
// endpoint is the section key.
type StoreBackend struct {
	Store *SectionStore
}

func (b *StoreBackend) Fetch(ctx context.Context, endpoint string) (Document, error) {
	return b.Store.GetSection(endpoint)
}

func (b *StoreBackend) Update(ctx context.Context, endpoint string, doc Document) (Document, error) {
	return b.Store.SaveSection(endpoint, doc)
}

// HTTPBackend talks to a remote section REST backend: GET returns the
// current document, POST replaces it and returns the persisted document.
// Every request is cache-busted: no-cache headers plus a timestamp query
// parameter, so intermediaries never serve a stale document.
type HTTPBackend struct {
	Client *http.Client
}

func (b *HTTPBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}

func (b *HTTPBackend) Fetch(ctx context.Context, endpoint string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cacheBust(endpoint), nil)
	if err != nil {
		return nil, err
	}
	setNoCache(req)
	resp, err := b.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteforge: fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("siteforge: fetch %s: unexpected status %s", endpoint, resp.Status)
	}
	return DecodeDocument(resp.Body)
}

func (b *HTTPBackend) Update(ctx context.Context, endpoint string, doc Document) (Document, error) {
	body, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cacheBust(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setNoCache(req)
	resp, err := b.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteforge: update %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("siteforge: update %s: unexpected status %s", endpoint, resp.Status)
	}
	return DecodeDocument(resp.Body)
}

func setNoCache(req *http.Request) {
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
}

func cacheBust(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("ts", strconv.FormatInt(time.Now().UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
