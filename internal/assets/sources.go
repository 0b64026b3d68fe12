package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxRemoteBytes caps remote downloads; a font is far below this.
const maxRemoteBytes = 32 << 20

// LocalFile reads path from disk.
func LocalFile(path string) Source {
	return Source{
		Name: "file:" + path,
		Fetch: func(ctx context.Context) ([]byte, error) {
			return os.ReadFile(path)
		},
	}
}

// RemoteURL downloads url with client. A nil client gets a 30s timeout.
func RemoteURL(client *http.Client, url string) Source {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return Source{
		Name: url,
		Fetch: func(ctx context.Context) ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			res, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer res.Body.Close()

			if res.StatusCode < 200 || res.StatusCode >= 300 {
				return nil, fmt.Errorf("http %d", res.StatusCode)
			}
			return io.ReadAll(io.LimitReader(res.Body, maxRemoteBytes))
		},
	}
}
