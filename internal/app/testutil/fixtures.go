package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/model"
)

// SampleSegments returns two segments of a short English clip.
func SampleSegments() []provider.TranscriptionSegment {
	return []provider.TranscriptionSegment{
		{ID: 0, Text: " And so my fellow Americans,", Start: 0.0, End: 2.5},
		{ID: 1, Text: " ask not what your country can do for you.", Start: 2.5, End: 7.25},
	}
}

// SampleEnvelope is SampleSegments in output form.
func SampleEnvelope() model.Envelope {
	return model.Envelope{Segments: []model.Segment{
		{Text: " And so my fellow Americans,", StartTime: 0.0, EndTime: 2.5},
		{Text: " ask not what your country can do for you.", StartTime: 2.5, EndTime: 7.25},
	}}
}

// WriteAudioFile writes size bytes of fake audio into a temp dir and returns the path.
func WriteAudioFile(t testing.TB, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := make([]byte, size)
	copy(data, "RIFF")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	return path
}
