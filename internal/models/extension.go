package models

import (
	"fmt"
	"time"
)

// Extension describes a single extension, either as returned by a gallery
// or as recorded in the local installation.
type Extension struct {
	Publisher   string    `json:"publisher"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	FileSize    int64     `json:"fileSize,omitempty"`
	FilePath    string    `json:"filePath,omitempty"`
	InstalledAt time.Time `json:"installedAt,omitempty"`
}

// ExtensionID returns the canonical publisher.name identifier. Identifiers
// are compared exactly, without case folding.
func ExtensionID(ext *Extension) string {
	return fmt.Sprintf("%s.%s", ext.Publisher, ext.Name)
}

// FileName is the name the extension package is stored under locally.
func (e *Extension) FileName() string {
	return fmt.Sprintf("%s-%s.vsix", ExtensionID(e), e.Version)
}
