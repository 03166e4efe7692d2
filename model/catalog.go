// Package model - Catalog types mirror the paginated catalog API responses.
package model

// CatalogPage is one page of GET /catalog/packages?page=N
type CatalogPage struct {
	Results    []CatalogEntry `json:"results"`
	TotalPages int            `json:"totalPages"`
}

// CatalogEntry is a vendored component and its released versions
type CatalogEntry struct {
	Component string           `json:"component"`
	Versions  []CatalogVersion `json:"versions"`
}

// CatalogVersion carries the upstream metadata of one vendor release
type CatalogVersion struct {
	OSS *OSSInfo `json:"oss,omitempty"`
}

// OSSInfo holds the upstream fork point of a vendor release
type OSSInfo struct {
	ForkPoint string `json:"forkPoint"`
}
