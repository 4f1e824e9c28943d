package database

import (
	"vsxctl/internal/models"
)

func ToDBExtension(ext *models.Extension) *ExtensionDB {
	return &ExtensionDB{
		ID:          models.ExtensionID(ext),
		Publisher:   ext.Publisher,
		Name:        ext.Name,
		DisplayName: ext.DisplayName,
		Description: ext.Description,
		Version:     ext.Version,
		FilePath:    ext.FilePath,
		FileSize:    ext.FileSize,
		InstalledAt: ext.InstalledAt,
	}
}

func ToExtension(dbExt *ExtensionDB) *models.Extension {
	return &models.Extension{
		Publisher:   dbExt.Publisher,
		Name:        dbExt.Name,
		DisplayName: dbExt.DisplayName,
		Description: dbExt.Description,
		Version:     dbExt.Version,
		FilePath:    dbExt.FilePath,
		FileSize:    dbExt.FileSize,
		InstalledAt: dbExt.InstalledAt,
	}
}

func ToExtensionSlice(dbExtensions []ExtensionDB) []*models.Extension {
	result := make([]*models.Extension, len(dbExtensions))
	for i := range dbExtensions {
		result[i] = ToExtension(&dbExtensions[i])
	}
	return result
}
