package marketplace_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsxctl/internal/marketplace"
	"vsxctl/internal/marketplace/marketplacetest"
	"vsxctl/internal/models"
	"vsxctl/internal/utils"
)

var csharp = models.Extension{
	Publisher:   "ms-vscode",
	Name:        "csharp",
	DisplayName: "C#",
	Description: "C# for Visual Studio Code",
	Version:     "1.2.3",
}

func newGallery(t *testing.T, kind marketplace.MarketplaceType) (marketplace.Gallery, *marketplacetest.Server) {
	t.Helper()

	srv := marketplacetest.New()
	t.Cleanup(srv.Close)
	srv.Publish(csharp, []byte("vsix-bytes"))

	serviceURL := srv.MicrosoftURL()
	if kind == marketplace.MarketplaceTypeOpenVSX {
		serviceURL = srv.OpenVSXURL()
	}

	gallery, err := marketplace.NewFactory(serviceURL, 5*time.Second).CreateByType(kind)
	require.NoError(t, err)
	return gallery, srv
}

func TestQueryFindsExtension(t *testing.T) {
	for _, kind := range []marketplace.MarketplaceType{marketplace.MarketplaceTypeMicrosoft, marketplace.MarketplaceTypeOpenVSX} {
		t.Run(string(kind), func(t *testing.T) {
			gallery, _ := newGallery(t, kind)

			result, err := gallery.Query(context.Background(), marketplace.QueryOptions{Names: []string{"ms-vscode.csharp"}})
			require.NoError(t, err)
			require.Len(t, result.FirstPage, 1)
			assert.Equal(t, 1, result.Total)

			got := result.FirstPage[0]
			assert.Contains(t, got.DownloadURL, "/_files/ms-vscode/csharp/1.2.3")
			if diff := cmp.Diff(&csharp, got, cmpopts.IgnoreFields(models.Extension{}, "DownloadURL")); diff != "" {
				t.Errorf("unexpected extension (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryNoMatchIsEmpty(t *testing.T) {
	for _, kind := range []marketplace.MarketplaceType{marketplace.MarketplaceTypeMicrosoft, marketplace.MarketplaceTypeOpenVSX} {
		t.Run(string(kind), func(t *testing.T) {
			gallery, _ := newGallery(t, kind)

			result, err := gallery.Query(context.Background(), marketplace.QueryOptions{Names: []string{"nobody.nothing"}})
			require.NoError(t, err)
			assert.Empty(t, result.FirstPage)
			assert.Equal(t, 0, result.Total)
		})
	}
}

func TestQueryUpstreamFailure(t *testing.T) {
	gallery, srv := newGallery(t, marketplace.MarketplaceTypeMicrosoft)
	srv.FailWith(http.StatusServiceUnavailable)

	_, err := gallery.Query(context.Background(), marketplace.QueryOptions{Names: []string{"ms-vscode.csharp"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestQuerySendsSessionHeaders(t *testing.T) {
	gallery, srv := newGallery(t, marketplace.MarketplaceTypeMicrosoft)

	_, err := gallery.Query(context.Background(), marketplace.QueryOptions{Names: []string{"ms-vscode.csharp"}})
	require.NoError(t, err)

	headers := srv.LastHeaders()
	assert.Equal(t, utils.HTTPAPIVersion, headers.Get(utils.AcceptHeader))
	assert.NotEmpty(t, headers.Get(utils.SessionIDHeader))
	assert.Equal(t, utils.UserAgent, headers.Get(utils.UserAgentHeader))
}

func TestDownload(t *testing.T) {
	gallery, srv := newGallery(t, marketplace.MarketplaceTypeOpenVSX)

	result, err := gallery.Query(context.Background(), marketplace.QueryOptions{Names: []string{"ms-vscode.csharp"}})
	require.NoError(t, err)
	require.Len(t, result.FirstPage, 1)

	var buf bytes.Buffer
	n, err := gallery.Download(context.Background(), result.FirstPage[0], &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("vsix-bytes")), n)
	assert.Equal(t, "vsix-bytes", buf.String())
	assert.Equal(t, 1, srv.DownloadCount())
}

func TestDownloadWithoutURL(t *testing.T) {
	gallery, _ := newGallery(t, marketplace.MarketplaceTypeMicrosoft)

	_, err := gallery.Download(context.Background(), &models.Extension{Publisher: "a", Name: "b"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFactoryUnknownType(t *testing.T) {
	_, err := marketplace.NewFactory("http://localhost", time.Second).CreateByType("gopher-market")
	assert.Error(t, err)
}
