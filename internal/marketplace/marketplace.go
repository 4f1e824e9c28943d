package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vsxctl/internal/models"
	"vsxctl/internal/utils"
)

// Gallery query filter types and flags understood by the Visual Studio
// Marketplace extensionquery endpoint.
const (
	filterTypeTarget        = 8
	filterTypeExtensionName = 7
	filterTypeExcludeFlags  = 12

	queryFlags        = 2151
	vscodeTarget      = "Microsoft.VisualStudio.Code"
	unpublishedFlag   = "4096"
	totalCountMetaKey = "TotalCount"
)

// Marketplace is a client for the Visual Studio Marketplace gallery.
type Marketplace struct {
	httpClient
	serviceURL string
}

func NewMicrosoft(serviceURL string, timeout time.Duration) *Marketplace {
	return &Marketplace{
		httpClient: newHTTPClient(timeout),
		serviceURL: strings.TrimSuffix(serviceURL, "/"),
	}
}

func (m *Marketplace) GetName() string {
	return "Visual Studio Marketplace"
}

type queryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

type queryFilter struct {
	Criteria   []queryCriterion `json:"criteria"`
	PageNumber int              `json:"pageNumber"`
	PageSize   int              `json:"pageSize"`
	SortBy     int              `json:"sortBy"`
	SortOrder  int              `json:"sortOrder"`
}

type queryRequest struct {
	Filters []queryFilter `json:"filters"`
	Flags   int           `json:"flags"`
}

type queryResponse struct {
	Results []struct {
		Extensions []struct {
			ExtensionID      string `json:"extensionId"`
			ExtensionName    string `json:"extensionName"`
			DisplayName      string `json:"displayName"`
			ShortDescription string `json:"shortDescription"`
			Versions         []struct {
				Version  string `json:"version"`
				AssetURI string `json:"assetUri"`
				Files    []struct {
					AssetType string `json:"assetType"`
					Source    string `json:"source"`
				} `json:"files"`
			} `json:"versions"`
			Publisher struct {
				PublisherName string `json:"publisherName"`
			} `json:"publisher"`
		} `json:"extensions"`
		ResultMetadata []struct {
			MetadataType  string `json:"metadataType"`
			MetadataItems []struct {
				Name  string `json:"name"`
				Count int    `json:"count"`
			} `json:"metadataItems"`
		} `json:"resultMetadata"`
	} `json:"results"`
}

func (m *Marketplace) Query(ctx context.Context, opts QueryOptions) (*QueryResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = utils.DefaultPageSize
	}

	criteria := []queryCriterion{
		{FilterType: filterTypeTarget, Value: vscodeTarget},
		{FilterType: filterTypeExcludeFlags, Value: unpublishedFlag},
	}
	for _, name := range opts.Names {
		criteria = append(criteria, queryCriterion{FilterType: filterTypeExtensionName, Value: name})
	}

	requestBody := queryRequest{
		Filters: []queryFilter{
			{
				Criteria:   criteria,
				PageNumber: 1,
				PageSize:   pageSize,
			},
		},
		Flags: queryFlags,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.serviceURL+"/extensionquery", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(utils.ContentTypeHeader, utils.JSONContentType)
	req.Header.Set(utils.AcceptHeader, utils.HTTPAPIVersion)

	bodyBytes, err := m.doJSON(req)
	if err != nil {
		return nil, err
	}

	var response queryResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &QueryResult{PageSize: pageSize}
	if len(response.Results) == 0 {
		return result, nil
	}

	first := response.Results[0]
	for _, ext := range first.Extensions {
		if len(ext.Versions) == 0 {
			continue
		}

		latestVersion := ext.Versions[0]
		var downloadURL string
		for _, file := range latestVersion.Files {
			if file.AssetType == utils.VSIXPackageAssetType {
				downloadURL = file.Source
				break
			}
		}
		if downloadURL == "" && latestVersion.AssetURI != "" {
			downloadURL = latestVersion.AssetURI + "/" + utils.VSIXPackageAssetType
		}

		result.FirstPage = append(result.FirstPage, &models.Extension{
			Publisher:   ext.Publisher.PublisherName,
			Name:        ext.ExtensionName,
			DisplayName: ext.DisplayName,
			Description: ext.ShortDescription,
			Version:     latestVersion.Version,
			DownloadURL: downloadURL,
		})
	}

	result.Total = len(result.FirstPage)
	for _, meta := range first.ResultMetadata {
		for _, item := range meta.MetadataItems {
			if item.Name == totalCountMetaKey {
				result.Total = item.Count
			}
		}
	}

	return result, nil
}

func (m *Marketplace) Download(ctx context.Context, ext *models.Extension, w io.Writer) (int64, error) {
	return m.download(ctx, ext, w)
}
