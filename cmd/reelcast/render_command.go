package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"reelcast/internal/config"
	"reelcast/internal/pipeline"
	"reelcast/internal/pkg/errors"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/render"
)

const lockFileName = "reelcast.lock"

type renderOptions struct {
	text    string
	file    string
	out     string
	apiKey  string
	verbose bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render text into a captioned mp4",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runRender(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "Caption text")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read caption text from a file, or - for stdin")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "short.mp4", "Output video path")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Narration API key for this render (overrides OPENAI_API_KEY)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline details to stderr")
	return cmd
}

func runRender(cmd *cobra.Command, cfg *config.Config, opts renderOptions) error {
	text, err := readText(opts.text, opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	log := logger.Discard()
	if opts.verbose {
		lc := cfg.LoggerConfig("reelcast-cli")
		lc.Format = "text"
		lc.Output = stderr
		log = logger.New(lc)
	}

	lock, err := acquireLock(lockDir(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	pl := pipeline.New(cfg, log, phasePrinter(stderr))

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Render.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, time.Duration(cfg.Render.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	res, err := pl.Machine.Render(runCtx, render.Request{
		Text:       text,
		Credential: strings.TrimSpace(opts.apiKey),
	})
	if err != nil {
		if runCtx.Err() != nil {
			return runCtx.Err()
		}
		return fmt.Errorf("%s (%s)", errors.PublicMessage(err), errors.GetCode(err))
	}

	if err := writeOutput(opts.out, res.Video); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(summaryRows(opts.out, res)))
	return nil
}

// phasePrinter reports each transition on one line.
func phasePrinter(w io.Writer) render.Observer {
	return func(s render.Status) {
		if s.Phase == render.PhaseIdle {
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", s.Phase, s.Message)
	}
}

func summaryRows(out string, res render.Result) [][2]string {
	narration := "yes"
	if !res.HasAudio {
		narration = "no"
		if res.NarrationSkipped != "" {
			narration = "no (" + res.NarrationSkipped + ")"
		}
	}
	return [][2]string{
		{"Job", res.JobID},
		{"Output", out},
		{"Size", strconv.Itoa(len(res.Video)) + " bytes"},
		{"Estimated", strconv.Itoa(res.EstimatedSeconds) + "s"},
		{"Duration", strconv.FormatFloat(res.DurationSeconds, 'f', 2, 64) + "s"},
		{"Narration", narration},
	}
}

func lockDir(cfg *config.Config) string {
	if cfg.FFmpeg.WorkDir != "" {
		return cfg.FFmpeg.WorkDir
	}
	return os.TempDir()
}

// acquireLock keeps two CLI renders from sharing a work directory.
func acquireLock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another render is running in %s", dir)
	}
	return lock, nil
}

func writeOutput(path string, video []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, video, 0o644); err != nil {
		return fmt.Errorf("write video: %w", err)
	}
	return nil
}
