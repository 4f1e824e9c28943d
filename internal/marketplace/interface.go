package marketplace

import (
	"context"
	"io"

	"vsxctl/internal/models"
)

// Gallery is a remote extension catalog.
type Gallery interface {
	// Query returns the extensions whose publisher.name identifier matches
	// one of opts.Names. An empty result is not an error.
	Query(ctx context.Context, opts QueryOptions) (*QueryResult, error)
	// Download streams the extension package to w and returns the number
	// of bytes written.
	Download(ctx context.Context, ext *models.Extension, w io.Writer) (int64, error)
	GetName() string
}

type QueryOptions struct {
	Names    []string
	PageSize int
}

// QueryResult is the first page of a gallery query.
type QueryResult struct {
	FirstPage []*models.Extension
	Total     int
	PageSize  int
}

// MarketplaceType represents the type of marketplace
type MarketplaceType string

const (
	MarketplaceTypeMicrosoft MarketplaceType = "microsoft"
	MarketplaceTypeOpenVSX   MarketplaceType = "open-vsx"
)
