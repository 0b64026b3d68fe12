package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Default engine filenames.
const (
	DefaultFontFile    = "Inter-Regular.ttf"
	DefaultCaptionFile = "script.txt"
	DefaultAudioFile   = "narration.mp3"
	DefaultOutputFile  = "out.mp4"
)

// Canvas is the solid background the caption is drawn on.
type Canvas struct {
	Color  string `toml:"color"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Panel is the translucent box behind the text.
type Panel struct {
	X     int    `toml:"x"`
	Y     int    `toml:"y"`
	W     int    `toml:"w"`
	H     int    `toml:"h"`
	Color string `toml:"color"`
}

// Text styles the caption.
type Text struct {
	Color       string `toml:"color"`
	Size        int    `toml:"size"`
	LineSpacing int    `toml:"line_spacing"`
	BorderWidth int    `toml:"border_width"`
	BorderColor string `toml:"border_color"`
}

// Style groups the visual parameters of a render.
type Style struct {
	Canvas Canvas `toml:"canvas"`
	Panel  Panel  `toml:"panel"`
	Text   Text   `toml:"text"`
}

// DefaultStyle is the 1080x1920 dark card with centered white text.
func DefaultStyle() Style {
	return Style{
		Canvas: Canvas{Color: "#0a0a0a", Width: 1080, Height: 1920},
		Panel:  Panel{X: 80, Y: 200, W: 920, H: 1520, Color: "#111111AA"},
		Text: Text{
			Color:       "white",
			Size:        52,
			LineSpacing: 10,
			BorderWidth: 4,
			BorderColor: "#000000AA",
		},
	}
}

// Plan describes one render. Filenames are relative to the workspace.
type Plan struct {
	DurationSeconds int
	WithAudio       bool

	FontFile    string
	CaptionFile string
	AudioFile   string
	OutputFile  string

	Style Style
}

// NewPlan returns a plan with default filenames and style.
func NewPlan(durationSeconds int, withAudio bool) Plan {
	return Plan{
		DurationSeconds: durationSeconds,
		WithAudio:       withAudio,
		FontFile:        DefaultFontFile,
		CaptionFile:     DefaultCaptionFile,
		AudioFile:       DefaultAudioFile,
		OutputFile:      DefaultOutputFile,
		Style:           DefaultStyle(),
	}
}

// Build constructs the ffmpeg arguments for p, without the binary name.
//
// Without audio the output gets -an and no audio codec. With audio the
// narration is the only second input, encoded as AAC, and -shortest ends
// the output with whichever stream finishes first.
func Build(p Plan) []string {
	d := strconv.Itoa(p.DurationSeconds)
	args := make([]string, 0, 32)

	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Inputs ---
	args = append(args, "-f", "lavfi", "-i", canvasSource(p.Style.Canvas, d))
	if p.WithAudio {
		args = append(args, "-i", p.AudioFile)
	}

	// --- Overlay ---
	args = append(args, "-vf", Filter(p))

	// --- Output ---
	args = append(args, "-t", d, "-c:v", "libx264", "-pix_fmt", "yuv420p")
	if p.WithAudio {
		args = append(args, "-c:a", "aac", "-shortest")
	} else {
		args = append(args, "-an")
	}
	return append(args, p.OutputFile)
}

// Filter returns the -vf chain: panel box, then centered drawtext. The
// caption file is drawn literally, so % and \ in the text are not expanded.
func Filter(p Plan) string {
	b, t := p.Style.Panel, p.Style.Text
	box := fmt.Sprintf("drawbox=x=%d:y=%d:w=%d:h=%d:color=%s:t=fill", b.X, b.Y, b.W, b.H, b.Color)
	text := strings.Join([]string{
		"drawtext=fontfile=" + p.FontFile,
		"textfile=" + p.CaptionFile,
		"expansion=none",
		"fontcolor=" + t.Color,
		"fontsize=" + strconv.Itoa(t.Size),
		"line_spacing=" + strconv.Itoa(t.LineSpacing),
		"x=(w-text_w)/2",
		"y=(h-text_h)/2",
		"borderw=" + strconv.Itoa(t.BorderWidth),
		"bordercolor=" + t.BorderColor,
	}, ":")
	return box + "," + text
}

func canvasSource(c Canvas, d string) string {
	return fmt.Sprintf("color=c=%s:s=%dx%d:d=%s", c.Color, c.Width, c.Height, d)
}

// CommandLine renders args as a shell-like string for display. Arguments
// containing spaces or shell metacharacters are single-quoted.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, binary)
	for _, a := range args {
		if strings.ContainsAny(a, " ()'\"$*;&|") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
