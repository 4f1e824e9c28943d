// Package cli implements the extension commands: listing what is installed
// and installing an extension from the gallery.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vsxctl/internal/i18n"
	"vsxctl/internal/marketplace"
	"vsxctl/internal/models"
)

// exampleID is shown to users who pass something other than a full
// publisher.name identifier.
const exampleID = "ms-vscode.csharp"

var (
	ErrNotFound         = errors.New("extension not found")
	ErrAlreadyInstalled = errors.New("extension already installed")
)

// commandError carries a localized message while still matching its kind
// with errors.Is.
type commandError struct {
	kind error
	msg  string
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.kind }

type Gallery interface {
	Query(ctx context.Context, opts marketplace.QueryOptions) (*marketplace.QueryResult, error)
}

type Registry interface {
	GetInstalled(ctx context.Context) ([]*models.Extension, error)
	// Install returns the installed extension, or a non-nil error.
	Install(ctx context.Context, ext *models.Extension) (*models.Extension, error)
}

// Args are the parsed command line flags that select a command.
type Args struct {
	ListExtensions   bool
	InstallExtension string
}

type Main struct {
	registry Registry
	gallery  Gallery
	out      io.Writer
	messages i18n.Formatter
}

func New(registry Registry, gallery Gallery, out io.Writer, messages i18n.Formatter) *Main {
	return &Main{
		registry: registry,
		gallery:  gallery,
		out:      out,
		messages: messages,
	}
}

// Run executes the command selected by args. Listing takes precedence over
// installing; with neither selected Run does nothing.
func (m *Main) Run(ctx context.Context, args Args) error {
	if args.ListExtensions {
		return m.listExtensions(ctx)
	} else if args.InstallExtension != "" {
		return m.installExtension(ctx, args.InstallExtension)
	}
	return nil
}

func (m *Main) listExtensions(ctx context.Context) error {
	extensions, err := m.registry.GetInstalled(ctx)
	if err != nil {
		return err
	}

	for _, ext := range extensions {
		fmt.Fprintf(m.out, "%s (%s)\n", ext.DisplayName, models.ExtensionID(ext))
	}
	return nil
}

func (m *Main) installExtension(ctx context.Context, id string) error {
	result, err := m.gallery.Query(ctx, marketplace.QueryOptions{Names: []string{id}})
	if err != nil {
		return err
	}

	if result == nil || len(result.FirstPage) == 0 || result.FirstPage[0] == nil {
		return &commandError{
			kind: ErrNotFound,
			msg:  m.messages.Format(i18n.NotFound, id) + "\n" + m.messages.Format(i18n.UseID, exampleID),
		}
	}
	extension := result.FirstPage[0]

	installed, err := m.registry.GetInstalled(ctx)
	if err != nil {
		return err
	}

	for _, ext := range installed {
		if models.ExtensionID(ext) == id {
			return &commandError{
				kind: ErrAlreadyInstalled,
				msg:  m.messages.Format(i18n.AlreadyInstalled, id),
			}
		}
	}

	fmt.Fprintln(m.out, m.messages.Format(i18n.FoundExtension, id))
	fmt.Fprintln(m.out, m.messages.Format(i18n.Installing))

	extension, err = m.registry.Install(ctx, extension)
	if err != nil {
		return err
	}
	if extension == nil {
		return fmt.Errorf("install of %s returned no extension", id)
	}

	fmt.Fprintln(m.out, m.messages.Format(i18n.SuccessInstall, models.ExtensionID(extension), extension.Version))
	return nil
}
