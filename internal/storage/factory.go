// Package storage builds the configured StorageProvider.
package storage

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"reelcast/internal/adapters/storage/gdrive"
	"reelcast/internal/adapters/storage/localfs"
	"reelcast/internal/config"
	"reelcast/internal/ports"
)

// Provider is the storage contract shared by the API and the worker.
type Provider = ports.StorageProvider

// NewProvider returns the provider named in cfg.
func NewProvider(ctx context.Context, cfg config.Storage) (Provider, error) {
	switch cfg.Provider {
	case "", "localfs":
		if cfg.LocalRoot == "" {
			return nil, fmt.Errorf("localfs storage needs a root directory")
		}
		return localfs.New(cfg.LocalRoot), nil

	case "gdrive":
		return newGDriveProvider(ctx, cfg.GDrive)

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// OAuthConfig returns the Drive OAuth client for the given credentials.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
}

func newGDriveProvider(ctx context.Context, g config.GDrive) (Provider, error) {
	if g.ClientID == "" || g.ClientSecret == "" || g.RefreshToken == "" {
		return nil, fmt.Errorf("gdrive storage needs client id, client secret and refresh token")
	}

	tok := &oauth2.Token{RefreshToken: g.RefreshToken}
	httpClient := OAuthConfig(g.ClientID, g.ClientSecret).Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return gdrive.NewClient(srv, g.FolderID), nil
}
