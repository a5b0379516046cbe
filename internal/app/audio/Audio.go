package audio

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"whisper-bridge/internal/app/model"
)

// SampleRate is the rate whisper models are trained on.
const SampleRate = 16000

// FFmpegAvailable reports whether ffmpeg and ffprobe are on PATH.
func FFmpegAvailable() bool {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return false
		}
	}
	return true
}

// GetAudioDuration returns the duration of filePath in seconds.
func GetAudioDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	return parseDuration(string(output))
}

func parseDuration(output string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(output), err)
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("invalid duration %v", d)
	}
	return d, nil
}

// Is16kHzWavFile checks whether filePath is already 16-bit PCM at 16kHz.
func Is16kHzWavFile(ctx context.Context, filePath string) (bool, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_streams", filePath)
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("ffprobe streams: %w", err)
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return false, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return is16kHzPCM(probeOutput), nil
}

func is16kHzPCM(probe model.FFProbeOutput) bool {
	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" && stream.SampleRate == SampleRate {
			return true
		}
	}
	return false
}

// ConvertTo16kHzWav writes a mono 16kHz WAV copy of inputFilePath into outDir
// and returns its path. The caller owns the returned file.
func ConvertTo16kHzWav(ctx context.Context, inputFilePath, outDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputFilePath), filepath.Ext(inputFilePath))
	outputWavPath := filepath.Join(outDir, base+"_16khz.wav")

	zap.L().Debug("Converting to 16kHz wav", zap.String("input", inputFilePath), zap.String("output", outputWavPath))

	cmd := exec.CommandContext(ctx, "ffmpeg", "-nostdin", "-y",
		"-i", inputFilePath,
		"-vn", "-acodec", "pcm_s16le", "-ar", strconv.Itoa(SampleRate), "-ac", "1",
		outputWavPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outputWavPath)
		return "", fmt.Errorf("FFmpeg error: %v, stderr: %s", err, lastLines(string(output), 5))
	}
	return outputWavPath, nil
}

// PrepareForWhisper returns a path whisper.cpp can read directly, converting
// when needed. cleanup removes anything that was created.
func PrepareForWhisper(ctx context.Context, inputFilePath string) (path string, cleanup func(), err error) {
	cleanup = func() {}

	ok, err := Is16kHzWavFile(ctx, inputFilePath)
	if err != nil {
		return "", cleanup, err
	}
	if ok {
		return inputFilePath, cleanup, nil
	}

	dir, err := os.MkdirTemp("", "whisper-bridge-*")
	if err != nil {
		return "", cleanup, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	path, err = ConvertTo16kHzWav(ctx, inputFilePath, dir)
	if err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}

// ReadFloat32Samples decodes any ffmpeg-readable file into 16kHz mono samples
// normalised to [-1, 1].
func ReadFloat32Samples(ctx context.Context, inputFilePath string) ([]float32, error) {
	tmp, err := os.CreateTemp("", "whisper-bridge-*.raw")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-nostdin", "-y",
		"-i", inputFilePath,
		"-ar", strconv.Itoa(SampleRate), "-ac", "1",
		"-f", "s16le", "-acodec", "pcm_s16le",
		tmpPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("FFmpeg error: %v, stderr: %s", err, lastLines(string(output), 5))
	}

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read converted audio: %w", err)
	}
	return pcm16ToFloat32(raw), nil
}

func pcm16ToFloat32(raw []byte) []float32 {
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(s) / 32768.0
	}
	return samples
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
