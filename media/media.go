// Package media wraps the audio and video tooling migration steps depend on.
//
// Transcoding is delegated to external binaries; this package only describes
// what a step needs to know about the result, such as frame counts for
// timestamp re-interpolation.
package media

import (
	"context"
	"fmt"
	"strings"
)

// AudioStats describes the audio streams on both sides of a transcode.
// Frame sizes are in samples per frame; rates in samples per second.
type AudioStats struct {
	InFrames     int
	InFrameSize  int
	InRate       int
	OutFrames    int
	OutFrameSize int
	OutRate      int
}

// Transcoder converts a recording's audio track.
type Transcoder interface {
	// TranscodeAudio encodes src as AAC into dst, replacing dst.
	TranscodeAudio(ctx context.Context, src, dst string) (AudioStats, error)
}

// Prober reports properties of a video file.
type Prober interface {
	VideoSize(ctx context.Context, path string) (width, height int, err error)
}

// TranscoderFunc adapts a function to Transcoder.
type TranscoderFunc func(ctx context.Context, src, dst string) (AudioStats, error)

// TranscodeAudio calls f.
func (f TranscoderFunc) TranscodeAudio(ctx context.Context, src, dst string) (AudioStats, error) {
	return f(ctx, src, dst)
}

// ExecError is returned when an external tool exits unsuccessfully.
type ExecError struct {
	Tool   string
	Args   []string
	Stderr string
	cause  error
}

func (e *ExecError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
		msg = msg[i+1:]
	}
	if msg == "" {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.cause)
	}
	return fmt.Sprintf("%s failed: %v: %s", e.Tool, e.cause, msg)
}

func (e *ExecError) Unwrap() error { return e.cause }
