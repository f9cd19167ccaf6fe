package media

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbe(t *testing.T) {
	out := []byte(`{"programs":[],"streams":[{"sample_rate":"44100","nb_read_frames":"431","duration_ts":441344}]}`)

	streams, err := parseProbe(out)
	require.NoError(t, err)
	p, err := streams[0].audio()
	require.NoError(t, err)
	assert.Equal(t, audioProbe{frames: 431, frameSize: 1024, rate: 44100}, p)

	_, err = parseProbe([]byte(`{"streams":[]}`))
	assert.Error(t, err)

	_, err = probeStream{SampleRate: "n/a"}.audio()
	assert.Error(t, err)
}

func TestTranscodeArgs(t *testing.T) {
	args := transcodeArgs("audio.wav", "audio.mp4")
	assert.Equal(t, "audio.wav", args[4])
	assert.Equal(t, "audio.mp4", args[len(args)-1])
	assert.Contains(t, args, "aac")
}

func TestExecError(t *testing.T) {
	_, err := run(context.Background(), "/nonexistent/ffmpeg", nil)
	var ee *ExecError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "/nonexistent/ffmpeg", ee.Tool)

	e := &ExecError{Tool: "ffmpeg", Stderr: "warn\nInvalid argument\n", cause: errors.New("exit status 1")}
	assert.Equal(t, "ffmpeg failed: exit status 1: Invalid argument", e.Error())
}

func TestTranscoderFunc(t *testing.T) {
	var tr Transcoder = TranscoderFunc(func(_ context.Context, src, dst string) (AudioStats, error) {
		return AudioStats{InFrames: 1}, nil
	})
	stats, err := tr.TranscodeAudio(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InFrames)
}

func TestFFmpegIntegration(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	f, err := NewFFmpeg(nil)
	if err != nil {
		t.Skip("ffprobe not installed")
	}
	_, _, err = f.VideoSize(context.Background(), "/nonexistent.mp4")
	assert.Error(t, err)
}
