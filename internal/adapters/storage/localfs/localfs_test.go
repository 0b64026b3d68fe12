package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelcast/internal/ports"
)

func TestPutGetDelete(t *testing.T) {
	root := t.TempDir()
	fs := New(root)
	ctx := context.Background()

	out, err := fs.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   "renders/job-1/short.mp4",
		ContentType: "video/mp4",
		Reader:      strings.NewReader("video-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renders/job-1/short.mp4", out.ObjectKey)
	assert.Equal(t, int64(11), out.Size)

	entries, err := os.ReadDir(filepath.Join(root, "renders", "job-1"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not linger")

	rc, contentType, size, err := fs.GetObject(ctx, out.ObjectKey)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
	assert.Equal(t, int64(11), size)
	assert.NotEmpty(t, contentType)

	require.NoError(t, fs.DeleteObject(ctx, out.ObjectKey))
	_, _, _, err = fs.GetObject(ctx, out.ObjectKey)
	assert.Error(t, err)
}

func TestRejectsEscapingKeys(t *testing.T) {
	fs := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../outside.mp4", "renders/../../x"} {
		_, err := fs.PutObject(ctx, ports.PutObjectInput{ObjectKey: key, Reader: strings.NewReader("x")})
		assert.Error(t, err, "key %q", key)
	}
	assert.Error(t, fs.DeleteObject(ctx, "../x"))
}
