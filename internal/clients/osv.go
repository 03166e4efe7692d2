package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/forkpoint-cves/internal/fetcher"
)

// OSVClient handles requests to the OSV vulnerability database
type OSVClient struct {
	queryURL string
	fetcher  *fetcher.Fetcher
}

// NewOSVClient creates a new OSV client
func NewOSVClient(baseURL string, f *fetcher.Fetcher) *OSVClient {
	return &OSVClient{
		queryURL: strings.TrimSuffix(baseURL, "/") + "/query",
		fetcher:  f,
	}
}

// maxQueryPages bounds next_page_token chains from a misbehaving server
const maxQueryPages = 100

type osvQuery struct {
	Package struct {
		Purl string `json:"purl"`
	} `json:"package"`
	PageToken string `json:"page_token,omitempty"`
}

type osvQueryResponse struct {
	Vulns         []models.Vulnerability `json:"vulns"`
	NextPageToken string                 `json:"next_page_token"`
}

// Query returns every vulnerability the database records for the package URL.
// Large result sets are followed through next_page_token.
func (c *OSVClient) Query(ctx context.Context, purl string) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	var query osvQuery
	query.Package.Purl = purl

	for page := 0; page < maxQueryPages; page++ {
		resp, err := c.queryPage(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to query OSV: %w", err)
		}
		vulns = append(vulns, resp.Vulns...)
		if resp.NextPageToken == "" {
			return vulns, nil
		}
		query.PageToken = resp.NextPageToken
	}
	return vulns, fmt.Errorf("failed to query OSV for %s: more than %d result pages", purl, maxQueryPages)
}

func (c *OSVClient) queryPage(ctx context.Context, query osvQuery) (*osvQueryResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	var resp osvQueryResponse
	err = c.fetcher.DoJSON(ctx, "osv query "+query.Package.Purl, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
