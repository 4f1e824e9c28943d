package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vsxctl/internal/models"
	"vsxctl/internal/utils"
)

type OpenVSXMarketplace struct {
	httpClient
	serviceURL string
}

func NewOpenVSX(serviceURL string, timeout time.Duration) *OpenVSXMarketplace {
	return &OpenVSXMarketplace{
		httpClient: newHTTPClient(timeout),
		serviceURL: strings.TrimSuffix(serviceURL, "/"),
	}
}

func (m *OpenVSXMarketplace) GetName() string {
	return "Open VSX Registry"
}

type openVSXQueryResponse struct {
	Offset     int `json:"offset"`
	TotalSize  int `json:"totalSize"`
	Extensions []struct {
		Name        string `json:"name"`
		Namespace   string `json:"namespace"`
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
		Version     string `json:"version"`
		Files       struct {
			Download string `json:"download"`
		} `json:"files"`
	} `json:"extensions"`
}

// Query issues one /api/-/query request per name, since the registry only
// filters on a single extensionId at a time.
func (m *OpenVSXMarketplace) Query(ctx context.Context, opts QueryOptions) (*QueryResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = utils.DefaultPageSize
	}

	result := &QueryResult{PageSize: pageSize}
	for _, name := range opts.Names {
		exts, err := m.queryByID(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, ext := range exts {
			if len(result.FirstPage) < pageSize {
				result.FirstPage = append(result.FirstPage, ext)
			}
			result.Total++
		}
	}

	return result, nil
}

func (m *OpenVSXMarketplace) queryByID(ctx context.Context, extensionID string) ([]*models.Extension, error) {
	params := url.Values{}
	params.Set("extensionId", extensionID)
	apiURL := fmt.Sprintf("%s/api/-/query?%s", m.serviceURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(utils.AcceptHeader, utils.JSONContentType)

	bodyBytes, err := m.doJSON(req)
	if err != nil {
		return nil, err
	}

	var response openVSXQueryResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	extensions := make([]*models.Extension, 0, len(response.Extensions))
	for _, ext := range response.Extensions {
		extensions = append(extensions, &models.Extension{
			Publisher:   ext.Namespace,
			Name:        ext.Name,
			DisplayName: ext.DisplayName,
			Description: ext.Description,
			Version:     ext.Version,
			DownloadURL: ext.Files.Download,
		})
	}

	return extensions, nil
}

func (m *OpenVSXMarketplace) Download(ctx context.Context, ext *models.Extension, w io.Writer) (int64, error) {
	return m.download(ctx, ext, w)
}
