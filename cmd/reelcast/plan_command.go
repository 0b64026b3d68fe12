package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelcast/internal/caption"
	"reelcast/internal/ffmpeg"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		text      string
		file      string
		withAudio bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the encoder command a render would run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			body, err := readText(text, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			seconds := caption.EstimateSeconds(body, cfg.Render.WordsPerMinute)
			p := ffmpeg.NewPlan(seconds, withAudio)
			p.Style = cfg.Style

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %d words, %ds\n", caption.WordCount(body), seconds)
			fmt.Fprintln(out, "# caption:")
			fmt.Fprintln(out, caption.Wrap(body, cfg.Render.WrapWidth))
			fmt.Fprintln(out, ffmpeg.CommandLine(cfg.FFmpeg.FFmpeg, ffmpeg.Build(p)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Caption text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read caption text from a file, or - for stdin")
	cmd.Flags().BoolVar(&withAudio, "with-audio", false, "Plan as if narration were present")
	return cmd
}
