package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	GalleryTypeMicrosoft = "microsoft"
	GalleryTypeOpenVSX   = "open-vsx"

	DefaultMicrosoftServiceURL = "https://marketplace.visualstudio.com/_apis/public/gallery"
	DefaultOpenVSXServiceURL   = "https://open-vsx.org"
)

type Config struct {
	GalleryType       string
	GalleryServiceURL string
	GalleryTimeout    time.Duration

	DBPath      string
	AutoMigrate bool

	ExtensionsDir string

	LogLevel  string
	LogPretty bool

	Locale string
}

// SetDefaults registers default values on v. Paths default to a directory
// under the user's home.
func SetDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".vsxctl")

	v.SetDefault("gallery.type", GalleryTypeMicrosoft)
	v.SetDefault("gallery.timeout", 30*time.Second)
	v.SetDefault("database.path", filepath.Join(dataDir, "extensions.db"))
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("extensions.directory", filepath.Join(dataDir, "extensions"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", true)
	v.SetDefault("locale", "en")
}

func GetConfig() Config {
	return FromViper(viper.GetViper())
}

func FromViper(v *viper.Viper) Config {
	galleryType := v.GetString("gallery.type")

	serviceURL := v.GetString("gallery.service_url")
	if serviceURL == "" {
		serviceURL = defaultServiceURL(galleryType)
	}

	return Config{
		GalleryType:       galleryType,
		GalleryServiceURL: serviceURL,
		GalleryTimeout:    v.GetDuration("gallery.timeout"),

		DBPath:      v.GetString("database.path"),
		AutoMigrate: v.GetBool("database.auto_migrate"),

		ExtensionsDir: v.GetString("extensions.directory"),

		LogLevel:  v.GetString("log.level"),
		LogPretty: v.GetBool("log.pretty"),

		Locale: v.GetString("locale"),
	}
}

func defaultServiceURL(galleryType string) string {
	if galleryType == GalleryTypeOpenVSX {
		return DefaultOpenVSXServiceURL
	}
	return DefaultMicrosoftServiceURL
}
