// Package clients wraps the catalog and vulnerability database HTTP APIs.
package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ortelius/forkpoint-cves/internal/fetcher"
	"github.com/ortelius/forkpoint-cves/model"
)

const catalogPath = "/catalog/packages"

// CatalogClient handles requests to the paginated catalog API
type CatalogClient struct {
	baseURL string
	fetcher *fetcher.Fetcher
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(baseURL string, f *fetcher.Fetcher) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		fetcher: f,
	}
}

// Page fetches one catalog page; pages are numbered from 1
func (c *CatalogClient) Page(ctx context.Context, page int) (*model.CatalogPage, error) {
	u, err := url.Parse(c.baseURL + catalogPath)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %q base url: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	pageURL := u.String()

	var result model.CatalogPage
	err = c.fetcher.DoJSON(ctx, fmt.Sprintf("catalog page %d", page), func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
