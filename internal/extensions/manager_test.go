package extensions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsxctl/internal/database"
	"vsxctl/internal/models"
)

type fakeDownloader struct {
	content string
	err     error
	calls   int
}

func (f *fakeDownloader) Download(ctx context.Context, ext *models.Extension, w io.Writer) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	n, err := io.WriteString(w, f.content)
	return int64(n), err
}

func newTestManager(t *testing.T, downloader Downloader) (*Manager, afero.Fs) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "extensions.db"), true)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	m := New(db, fs, "/data/extensions", downloader)
	t.Cleanup(func() { m.Close() })
	return m, fs
}

func galleryExtension(publisher, name, version string) *models.Extension {
	return &models.Extension{
		Publisher:   publisher,
		Name:        name,
		DisplayName: name + " display",
		Version:     version,
		DownloadURL: "https://gallery.example/" + publisher + "/" + name,
	}
}

func TestInstallWritesPackageAndRecord(t *testing.T) {
	downloader := &fakeDownloader{content: "vsix-bytes"}
	m, fs := newTestManager(t, downloader)
	ctx := context.Background()

	installed, err := m.Install(ctx, galleryExtension("pub", "ext", "1.0.0"))
	require.NoError(t, err)

	assert.Equal(t, "pub.ext", models.ExtensionID(installed))
	assert.Equal(t, "1.0.0", installed.Version)
	assert.Equal(t, "/data/extensions/pub.ext-1.0.0.vsix", installed.FilePath)
	assert.Equal(t, int64(len("vsix-bytes")), installed.FileSize)
	assert.Empty(t, installed.DownloadURL)
	assert.False(t, installed.InstalledAt.IsZero())

	content, err := afero.ReadFile(fs, installed.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "vsix-bytes", string(content))

	exists, err := afero.Exists(fs, installed.FilePath+partialSuffix)
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := m.GetInstalled(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "pub.ext", models.ExtensionID(all[0]))
	assert.Equal(t, "ext display", all[0].DisplayName)
}

func TestGetInstalledEmpty(t *testing.T) {
	m, _ := newTestManager(t, &fakeDownloader{})

	all, err := m.GetInstalled(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetInstalledKeepsInstallOrder(t *testing.T) {
	m, _ := newTestManager(t, &fakeDownloader{content: "x"})
	ctx := context.Background()

	for _, ext := range []*models.Extension{
		galleryExtension("zeta", "z", "1.0.0"),
		galleryExtension("alpha", "a", "1.0.0"),
	} {
		_, err := m.Install(ctx, ext)
		require.NoError(t, err)
	}

	all, err := m.GetInstalled(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "zeta.z", models.ExtensionID(all[0]))
	assert.Equal(t, "alpha.a", models.ExtensionID(all[1]))
}

func TestInstallDownloadFailureLeavesNothing(t *testing.T) {
	boom := errors.New("connection reset")
	m, fs := newTestManager(t, &fakeDownloader{err: boom})
	ctx := context.Background()

	_, err := m.Install(ctx, galleryExtension("pub", "ext", "1.0.0"))
	require.ErrorIs(t, err, boom)

	files, err := afero.ReadDir(fs, "/data/extensions")
	require.NoError(t, err)
	assert.Empty(t, files)

	all, err := m.GetInstalled(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInstallDuplicateKeepsExistingPackage(t *testing.T) {
	downloader := &fakeDownloader{content: "first"}
	m, fs := newTestManager(t, downloader)
	ctx := context.Background()

	installed, err := m.Install(ctx, galleryExtension("pub", "ext", "1.0.0"))
	require.NoError(t, err)

	downloader.content = "second"
	_, err = m.Install(ctx, galleryExtension("pub", "ext", "1.0.0"))
	require.ErrorIs(t, err, ErrAlreadyRecorded)
	assert.Equal(t, 1, downloader.calls)

	content, err := afero.ReadFile(fs, installed.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))

	all, err := m.GetInstalled(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// stuckFs refuses to move or delete files.
type stuckFs struct {
	afero.Fs
}

func (f stuckFs) Rename(oldname, newname string) error { return errors.New("rename refused") }
func (f stuckFs) Remove(name string) error             { return errors.New("remove refused") }

func TestInstallRollbackFailuresAreLogged(t *testing.T) {
	var logs bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = previous })

	db, err := database.New(filepath.Join(t.TempDir(), "extensions.db"), true)
	require.NoError(t, err)
	m := New(db, stuckFs{afero.NewMemMapFs()}, "/data/extensions", &fakeDownloader{content: "x"})
	t.Cleanup(func() { m.Close() })
	ctx := context.Background()

	_, err = m.Install(ctx, galleryExtension("pub", "ext", "1.0.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename refused")

	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "remove refused")
	assert.Contains(t, logs.String(), "pub.ext-1.0.0.vsix.part")

	all, err := m.GetInstalled(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
