package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vsxctl/internal/models"
	"vsxctl/internal/utils"
)

// httpClient holds the transport shared by gallery providers. Each process
// uses one session id for all of its requests.
type httpClient struct {
	client    *http.Client
	sessionID string
}

func newHTTPClient(timeout time.Duration) httpClient {
	return httpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		sessionID: uuid.NewString(),
	}
}

func (c *httpClient) setCommonHeaders(req *http.Request) {
	req.Header.Set(utils.UserAgentHeader, utils.UserAgent)
	req.Header.Set(utils.SessionIDHeader, c.sessionID)
	req.Header.Set(utils.MarketUserHeader, c.sessionID)
}

// doJSON sends req and returns the body of a 200 response.
func (c *httpClient) doJSON(req *http.Request) ([]byte, error) {
	c.setCommonHeaders(req)

	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("gallery request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return bodyBytes, nil
}

func (c *httpClient) download(ctx context.Context, ext *models.Extension, w io.Writer) (int64, error) {
	if ext.DownloadURL == "" {
		return 0, fmt.Errorf("download URL not found for %s", models.ExtensionID(ext))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ext.DownloadURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.setCommonHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	log.Debug().
		Str("extension", models.ExtensionID(ext)).
		Str("size", humanize.Bytes(uint64(written))).
		Msg("downloaded extension package")

	return written, nil
}
