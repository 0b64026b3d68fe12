// Package ffmpeg builds the caption render command and runs it inside a
// per-job scratch directory.
//
// Build is pure: the same Plan always yields the same argument slice, so the
// CLI can print a plan without an ffmpeg binary present. The Local engine
// shells out to ffmpeg and ffprobe; compose talks to it only through the
// Engine and Workspace interfaces.
package ffmpeg
