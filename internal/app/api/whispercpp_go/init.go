//go:build whispercpp

package whispercpp_go

import (
	"whisper-bridge/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, func(config map[string]interface{}) (provider.TranscriptionProvider, error) {
		settings := provider.SettingsOf(config)
		return NewTranscriber(Config{
			ModelsDir:    provider.String(settings, "models_dir", ""),
			AutoDownload: provider.Bool(settings, "auto_download", false),
			Language:     provider.String(settings, "language", ""),
			Threads:      uint(provider.Int(settings, "threads", 0)),
		}), nil
	})
}
