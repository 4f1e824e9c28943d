// Package marketplacetest provides an in-process gallery that speaks both
// the Visual Studio Marketplace and the Open VSX query APIs.
package marketplacetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"

	"vsxctl/internal/models"
	"vsxctl/internal/utils"
)

const galleryPath = "/_apis/public/gallery"

type published struct {
	ext     models.Extension
	content []byte
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	extensions  []published
	queries     int
	downloads   int
	failStatus  int
	lastHeaders http.Header
}

func New() *Server {
	s := &Server{}

	router := mux.NewRouter()
	router.HandleFunc(galleryPath+"/extensionquery", s.handleExtensionQuery).Methods(http.MethodPost)
	router.HandleFunc("/api/-/query", s.handleOpenVSXQuery).Methods(http.MethodGet)
	router.HandleFunc("/_files/{publisher}/{name}/{version}", s.handleDownload).Methods(http.MethodGet)

	s.Server = httptest.NewServer(router)
	return s
}

// MicrosoftURL is the service URL for a Visual Studio Marketplace client.
func (s *Server) MicrosoftURL() string {
	return s.URL + galleryPath
}

// OpenVSXURL is the service URL for an Open VSX client.
func (s *Server) OpenVSXURL() string {
	return s.URL
}

// Publish makes ext available for queries and content available for
// download.
func (s *Server) Publish(ext models.Extension, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extensions = append(s.extensions, published{ext: ext, content: content})
}

// FailWith makes every subsequent request answer with status. Zero restores
// normal behavior.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

func (s *Server) QueryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func (s *Server) DownloadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads
}

func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeaders.Clone()
}

func (s *Server) begin(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastHeaders = r.Header.Clone()
	if s.failStatus != 0 {
		http.Error(w, http.StatusText(s.failStatus), s.failStatus)
		return false
	}
	return true
}

func (s *Server) find(id string) (published, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.extensions {
		if models.ExtensionID(&p.ext) == id {
			return p, true
		}
	}
	return published{}, false
}

func (s *Server) downloadURL(ext models.Extension) string {
	return fmt.Sprintf("%s/_files/%s/%s/%s", s.URL, ext.Publisher, ext.Name, ext.Version)
}

func (s *Server) handleExtensionQuery(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries++
	s.mu.Unlock()

	if !s.begin(w, r) {
		return
	}

	var query struct {
		Filters []struct {
			Criteria []struct {
				FilterType int    `json:"filterType"`
				Value      string `json:"value"`
			} `json:"criteria"`
		} `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	results := []interface{}{}
	for _, filter := range query.Filters {
		for _, criterion := range filter.Criteria {
			if criterion.FilterType != 7 {
				continue
			}
			p, ok := s.find(criterion.Value)
			if !ok {
				continue
			}
			results = append(results, map[string]interface{}{
				"extensionId":      models.ExtensionID(&p.ext),
				"extensionName":    p.ext.Name,
				"displayName":      p.ext.DisplayName,
				"shortDescription": p.ext.Description,
				"publisher": map[string]interface{}{
					"publisherName": p.ext.Publisher,
				},
				"versions": []map[string]interface{}{
					{
						"version": p.ext.Version,
						"files": []map[string]interface{}{
							{
								"assetType": utils.VSIXPackageAssetType,
								"source":    s.downloadURL(p.ext),
							},
						},
					},
				},
			})
		}
	}

	response := map[string]interface{}{
		"results": []map[string]interface{}{
			{
				"extensions": results,
				"resultMetadata": []map[string]interface{}{
					{
						"metadataType": "ResultCount",
						"metadataItems": []map[string]interface{}{
							{"name": "TotalCount", "count": len(results)},
						},
					},
				},
			},
		},
	}

	w.Header().Set(utils.ContentTypeHeader, utils.HTTPAPIVersion)
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleOpenVSXQuery(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries++
	s.mu.Unlock()

	if !s.begin(w, r) {
		return
	}

	extensions := []interface{}{}
	if p, ok := s.find(r.URL.Query().Get("extensionId")); ok {
		extensions = append(extensions, map[string]interface{}{
			"name":        p.ext.Name,
			"namespace":   p.ext.Publisher,
			"displayName": p.ext.DisplayName,
			"description": p.ext.Description,
			"version":     p.ext.Version,
			"files": map[string]string{
				"download": s.downloadURL(p.ext),
			},
		})
	}

	w.Header().Set(utils.ContentTypeHeader, utils.JSONContentType)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"offset":     0,
		"totalSize":  len(extensions),
		"extensions": extensions,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.downloads++
	s.mu.Unlock()

	if !s.begin(w, r) {
		return
	}

	vars := mux.Vars(r)
	p, ok := s.find(vars["publisher"] + "." + vars["name"])
	if !ok || p.ext.Version != vars["version"] {
		http.NotFound(w, r)
		return
	}

	w.Header().Set(utils.ContentTypeHeader, "application/octet-stream")
	w.Write(p.content)
}
