package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/hupe1980/pupilrec/codec"
)

// aacFrameSize is the number of samples per AAC-LC frame.
const aacFrameSize = 1024

// FFmpeg implements Transcoder and Prober with the ffmpeg and ffprobe
// binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	Logger      *slog.Logger
}

// NewFFmpeg looks both binaries up in PATH.
func NewFFmpeg(logger *slog.Logger) (*FFmpeg, error) {
	ff, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, err
	}
	fp, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, err
	}
	return &FFmpeg{FFmpegPath: ff, FFprobePath: fp, Logger: logger}, nil
}

func (f *FFmpeg) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.Logger
}

// TranscodeAudio encodes the first audio stream of src to AAC.
func (f *FFmpeg) TranscodeAudio(ctx context.Context, src, dst string) (AudioStats, error) {
	in, err := f.probeAudio(ctx, src)
	if err != nil {
		return AudioStats{}, err
	}
	args := transcodeArgs(src, dst)
	f.logger().DebugContext(ctx, "transcoding audio", "src", src, "dst", dst)
	if _, err := run(ctx, f.FFmpegPath, args); err != nil {
		return AudioStats{}, err
	}
	out, err := f.probeAudio(ctx, dst)
	if err != nil {
		return AudioStats{}, err
	}
	if out.frameSize == 0 {
		out.frameSize = aacFrameSize
	}
	return AudioStats{
		InFrames:     in.frames,
		InFrameSize:  in.frameSize,
		InRate:       in.rate,
		OutFrames:    out.frames,
		OutFrameSize: out.frameSize,
		OutRate:      out.rate,
	}, nil
}

// VideoSize returns the dimensions of the first video stream.
func (f *FFmpeg) VideoSize(ctx context.Context, path string) (int, int, error) {
	out, err := run(ctx, f.FFprobePath, []string{
		"-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "json", path,
	})
	if err != nil {
		return 0, 0, err
	}
	streams, err := parseProbe(out)
	if err != nil {
		return 0, 0, err
	}
	return streams[0].Width, streams[0].Height, nil
}

func transcodeArgs(src, dst string) []string {
	return []string{"-y", "-v", "error", "-i", src, "-vn", "-c:a", "aac", "-f", "mp4", dst}
}

type audioProbe struct {
	frames    int
	frameSize int
	rate      int
}

func (f *FFmpeg) probeAudio(ctx context.Context, path string) (audioProbe, error) {
	out, err := run(ctx, f.FFprobePath, []string{
		"-v", "error", "-select_streams", "a:0", "-count_frames",
		"-show_entries", "stream=sample_rate,nb_read_frames,duration_ts", "-of", "json", path,
	})
	if err != nil {
		return audioProbe{}, err
	}
	streams, err := parseProbe(out)
	if err != nil {
		return audioProbe{}, err
	}
	return streams[0].audio()
}

type probeStream struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SampleRate   string `json:"sample_rate"`
	NbReadFrames string `json:"nb_read_frames"`
	DurationTS   int64  `json:"duration_ts"`
}

func (s probeStream) audio() (audioProbe, error) {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil {
		return audioProbe{}, fmt.Errorf("ffprobe sample_rate %q: %w", s.SampleRate, err)
	}
	frames, err := strconv.Atoi(s.NbReadFrames)
	if err != nil {
		return audioProbe{}, fmt.Errorf("ffprobe nb_read_frames %q: %w", s.NbReadFrames, err)
	}
	p := audioProbe{frames: frames, rate: rate}
	if frames > 0 {
		p.frameSize = int(s.DurationTS / int64(frames))
	}
	return p, nil
}

func parseProbe(out []byte) ([]probeStream, error) {
	var doc struct {
		Streams []probeStream `json:"streams"`
	}
	if err := (codec.JSON{}).Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("ffprobe output: %w", err)
	}
	if len(doc.Streams) == 0 {
		return nil, fmt.Errorf("ffprobe: no matching stream")
	}
	return doc.Streams, nil
}

func run(ctx context.Context, bin string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ExecError{Tool: bin, Args: args, Stderr: stderr.String(), cause: err}
	}
	return stdout.Bytes(), nil
}
