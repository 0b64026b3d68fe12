package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"reelcast/internal/pkg/logger"
)

// Engine prepares the encoder and hands out isolated workspaces.
type Engine interface {
	// Load verifies the encoder is usable. It is cheap after the first
	// successful call.
	Load(ctx context.Context) error
	// Open creates a fresh workspace for one job.
	Open(ctx context.Context) (Workspace, error)
}

// Workspace is a job's private scratch area. Callers must Release it.
type Workspace interface {
	WriteFile(name string, data []byte) error
	Exec(ctx context.Context, args []string) error
	ReadFile(name string) ([]byte, error)
	Probe(ctx context.Context, name string) (ProbeResult, error)
	Release() error
}

// Config locates the binaries and the scratch root.
type Config struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	// WorkDir is the parent of per-job directories; empty means os.TempDir.
	WorkDir string `toml:"work_dir"`
}

// ExecError carries the tail of ffmpeg's stderr.
type ExecError struct {
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg: %v: %s", e.Err, e.Stderr)
}

func (e *ExecError) Unwrap() error { return e.Err }

// maxStderr bounds how much stderr an ExecError keeps.
const maxStderr = 2048

// Local runs the ffmpeg and ffprobe binaries found on the host.
type Local struct {
	cfg Config
	log *logger.Logger

	mu      sync.Mutex
	loaded  bool
	ffmpeg  string
	ffprobe string
}

// NewLocal returns a Local engine. Empty binary names default to
// "ffmpeg" and "ffprobe" on PATH.
func NewLocal(cfg Config, log *logger.Logger) *Local {
	if strings.TrimSpace(cfg.FFmpeg) == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(cfg.FFprobe) == "" {
		cfg.FFprobe = "ffprobe"
	}
	return &Local{cfg: cfg, log: logger.OrDefault(log).WithComponent("ffmpeg")}
}

// Binary returns the configured ffmpeg binary name.
func (l *Local) Binary() string {
	return l.cfg.FFmpeg
}

// Load resolves both binaries and runs ffmpeg -version once. A failed load
// is retried on the next call.
func (l *Local) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return nil
	}

	ffmpegPath, err := exec.LookPath(l.cfg.FFmpeg)
	if err != nil {
		return fmt.Errorf("ffmpeg load: %w", err)
	}
	// ffprobe is optional; without it Probe fails and callers fall back.
	ffprobePath, probeErr := exec.LookPath(l.cfg.FFprobe)
	if probeErr != nil {
		l.log.Warn("ffprobe not found", "binary", l.cfg.FFprobe)
	}

	if out, err := exec.CommandContext(ctx, ffmpegPath, "-version").CombinedOutput(); err != nil {
		return &ExecError{Stderr: tail(out), Err: err}
	}

	l.ffmpeg, l.ffprobe, l.loaded = ffmpegPath, ffprobePath, true
	l.log.Debug("engine loaded", "ffmpeg", ffmpegPath, "ffprobe", ffprobePath)
	return nil
}

// Open creates a temp directory under WorkDir.
func (l *Local) Open(ctx context.Context) (Workspace, error) {
	l.mu.Lock()
	loaded, ffmpegPath, ffprobePath := l.loaded, l.ffmpeg, l.ffprobe
	l.mu.Unlock()
	if !loaded {
		return nil, fmt.Errorf("ffmpeg open: engine not loaded")
	}

	if l.cfg.WorkDir != "" {
		if err := os.MkdirAll(l.cfg.WorkDir, 0o755); err != nil {
			return nil, fmt.Errorf("ffmpeg open: %w", err)
		}
	}
	dir, err := os.MkdirTemp(l.cfg.WorkDir, "reelcast-job-*")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg open: %w", err)
	}
	return &localWorkspace{dir: dir, ffmpeg: ffmpegPath, ffprobe: ffprobePath}, nil
}

type localWorkspace struct {
	dir     string
	ffmpeg  string
	ffprobe string

	released bool
}

func (w *localWorkspace) path(name string) (string, error) {
	if w.released {
		return "", fmt.Errorf("workspace released")
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid workspace filename %q", name)
	}
	return filepath.Join(w.dir, name), nil
}

func (w *localWorkspace) WriteFile(name string, data []byte) error {
	p, err := w.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}

func (w *localWorkspace) ReadFile(name string) ([]byte, error) {
	p, err := w.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (w *localWorkspace) Exec(ctx context.Context, args []string) error {
	if w.released {
		return fmt.Errorf("workspace released")
	}
	cmd := exec.CommandContext(ctx, w.ffmpeg, args...)
	cmd.Dir = w.dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &ExecError{Stderr: tail(stderr.Bytes()), Err: err}
	}
	return nil
}

func (w *localWorkspace) Probe(ctx context.Context, name string) (ProbeResult, error) {
	if w.ffprobe == "" {
		return ProbeResult{}, fmt.Errorf("ffprobe unavailable")
	}
	p, err := w.path(name)
	if err != nil {
		return ProbeResult{}, err
	}
	return Inspect(ctx, w.ffprobe, p)
}

// Release removes the directory. It is safe to call more than once.
func (w *localWorkspace) Release() error {
	if w.released {
		return nil
	}
	w.released = true
	return os.RemoveAll(w.dir)
}

func tail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return s
}
