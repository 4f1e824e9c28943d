package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsxctl/internal/cli"
	"vsxctl/internal/config"
	"vsxctl/internal/database"
	"vsxctl/internal/extensions"
	"vsxctl/internal/i18n"
	"vsxctl/internal/marketplace"
	"vsxctl/internal/utils"
)

var (
	cfgFile          string
	listExtensions   bool
	installExtension string

	// configErr is set by initConfig when a config file exists but cannot
	// be used.
	configErr error

	rootCmd = &cobra.Command{
		Use:   "vsxctl",
		Short: "Manage Visual Studio Code extensions from the command line",
		Long: `vsxctl lists locally installed extensions and installs extensions
from the Visual Studio Marketplace or an Open VSX registry.`,
		Example: strings.Join([]string{
			"  vsxctl --list-extensions",
			"  vsxctl --install-extension ms-vscode.csharp",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if configErr != nil {
				return configErr
			}
			return runMain(cmd.Context(), cmd.OutOrStdout(), cli.Args{
				ListExtensions:   listExtensions,
				InstallExtension: installExtension,
			})
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default ./config.yaml)")
	rootCmd.Flags().BoolVar(&listExtensions, "list-extensions", false, "list the installed extensions")
	rootCmd.Flags().StringVar(&installExtension, "install-extension", "", "install an extension by its publisher.name identifier")
}

func initConfig() {
	configErr = nil
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("vsxctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()

	cfg := config.GetConfig()
	utils.SetupLogging(cfg.LogLevel, cfg.LogPretty)

	var notFound viper.ConfigFileNotFoundError
	switch {
	case readErr == nil:
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	case cfgFile == "" && errors.As(readErr, &notFound):
		log.Debug().Msg("no config file found, using defaults")
	default:
		configErr = fmt.Errorf("error reading config file: %w", readErr)
	}
}

func runMain(ctx context.Context, out io.Writer, args cli.Args) error {
	cfg := config.GetConfig()

	gallery, err := marketplace.NewFactory(cfg.GalleryServiceURL, cfg.GalleryTimeout).
		CreateByType(marketplace.MarketplaceType(cfg.GalleryType))
	if err != nil {
		return err
	}

	db, err := database.New(cfg.DBPath, cfg.AutoMigrate)
	if err != nil {
		return fmt.Errorf("error initializing extension database: %w", err)
	}

	extManager := extensions.New(db, afero.NewOsFs(), cfg.ExtensionsDir, gallery)
	defer extManager.Close()

	log.Debug().Str("gallery", gallery.GetName()).Str("url", cfg.GalleryServiceURL).Msg("using gallery")

	return cli.New(extManager, gallery, out, i18n.New(cfg.Locale)).Run(ctx, args)
}
