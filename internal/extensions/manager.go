package extensions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"vsxctl/internal/database"
	"vsxctl/internal/models"
	"vsxctl/internal/utils"
)

const partialSuffix = ".part"

var ErrAlreadyRecorded = errors.New("extension already recorded")

// Downloader fetches an extension package from wherever it is published.
type Downloader interface {
	Download(ctx context.Context, ext *models.Extension, w io.Writer) (int64, error)
}

// Manager is the local extension registry: it knows what is installed and
// performs installations into the extensions directory.
type Manager struct {
	directory  string
	db         *database.Database
	fs         afero.Fs
	downloader Downloader
}

func New(db *database.Database, fs afero.Fs, directory string, downloader Downloader) *Manager {
	return &Manager{
		directory:  directory,
		db:         db,
		fs:         fs,
		downloader: downloader,
	}
}

// GetInstalled returns every installed extension in installation order.
func (m *Manager) GetInstalled(ctx context.Context) ([]*models.Extension, error) {
	extensions, err := m.db.GetAllExtensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read installed extensions: %w", err)
	}
	return database.ToExtensionSlice(extensions), nil
}

// Install downloads ext into the extensions directory and records it. The
// package is written under a temporary name and only moved into place once
// the database accepted the record, so a failed install leaves nothing
// behind and never clobbers an existing file.
func (m *Manager) Install(ctx context.Context, ext *models.Extension) (*models.Extension, error) {
	id := models.ExtensionID(ext)
	existing, err := m.db.GetExtensionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up extension %s: %w", id, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRecorded, id)
	}

	if err := utils.EnsureDirectory(m.fs, m.directory); err != nil {
		return nil, fmt.Errorf("failed to create extensions directory: %w", err)
	}

	filePath := filepath.Join(m.directory, ext.FileName())
	partialPath := filePath + partialSuffix

	size, err := m.downloadTo(ctx, ext, partialPath)
	if err != nil {
		m.discard(partialPath)
		return nil, err
	}

	installed := &models.Extension{
		Publisher:   ext.Publisher,
		Name:        ext.Name,
		DisplayName: ext.DisplayName,
		Description: ext.Description,
		Version:     ext.Version,
		FileSize:    size,
		FilePath:    filePath,
		InstalledAt: time.Now().UTC(),
	}

	if err := m.db.InsertExtension(ctx, database.ToDBExtension(installed)); err != nil {
		m.discard(partialPath)
		return nil, fmt.Errorf("error saving extension to database: %w", err)
	}

	if err := m.fs.Rename(partialPath, filePath); err != nil {
		if delErr := m.db.DeleteExtension(ctx, id); delErr != nil {
			log.Warn().Err(delErr).Str("extension", id).Msg("failed to roll back extension record")
		}
		m.discard(partialPath)
		return nil, fmt.Errorf("failed to move extension package into place: %w", err)
	}

	log.Debug().
		Str("extension", id).
		Str("path", filePath).
		Str("size", humanize.Bytes(uint64(size))).
		Msg("extension installed")

	return installed, nil
}

func (m *Manager) downloadTo(ctx context.Context, ext *models.Extension, path string) (int64, error) {
	file, err := m.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := m.downloader.Download(ctx, ext, file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write file: %w", closeErr)
	}
	return size, err
}

// discard removes a partial download left by a failed install.
func (m *Manager) discard(path string) {
	if err := utils.RemoveIfExists(m.fs, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove partial download")
	}
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
