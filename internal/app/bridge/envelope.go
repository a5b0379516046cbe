package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "whisper-bridge/internal/app/errors"
	"whisper-bridge/internal/app/model"
)

// ErrorEnvelope is written when the input file is missing: no segments at all.
func ErrorEnvelope(message string) model.Envelope {
	return model.Envelope{Error: message, Segments: []model.Segment{}}
}

// FailureEnvelope is written for every failure after the input check. It carries
// one zero-length segment so hosts that only read segments still show the error.
func FailureEnvelope(message string) model.Envelope {
	return model.Envelope{
		Error: message,
		Segments: []model.Segment{{
			Text:      "Error transcribing audio: " + message,
			StartTime: 0,
			EndTime:   0,
		}},
	}
}

// EncodeEnvelope renders env as two-space indented JSON. Non-ASCII text is
// written as UTF-8 and HTML characters are not escaped.
func EncodeEnvelope(env model.Envelope) ([]byte, error) {
	if env.Segments == nil {
		env.Segments = []model.Segment{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteEnvelope writes env to path through a temp file in the same directory,
// so a reader never sees a half-written document.
func WriteEnvelope(path string, env model.Envelope) error {
	data, err := EncodeEnvelope(env)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrOutputWrite, err.Error())
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrOutputWrite, "%s: %v", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.Wrapf(apperrors.ErrOutputWrite, "%s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.Wrapf(apperrors.ErrOutputWrite, "%s: %v", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return apperrors.Wrapf(apperrors.ErrOutputWrite, "%s: %v", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.Wrapf(apperrors.ErrOutputWrite, "%s: %v", path, err)
	}
	return nil
}

// ReadEnvelope parses an envelope from data.
func ReadEnvelope(data []byte) (*model.Envelope, error) {
	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Segments == nil {
		env.Segments = []model.Segment{}
	}
	return &env, nil
}
