package whisper_cpp

import (
	"whisper-bridge/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from configuration
func createWhisperCppProvider(config map[string]interface{}) (provider.TranscriptionProvider, error) {
	settings := provider.SettingsOf(config)

	return NewLocalTranscriber(Config{
		BinaryPath:   provider.String(settings, "binary_path", ""),
		ModelsDir:    provider.String(settings, "models_dir", ""),
		AutoDownload: provider.Bool(settings, "auto_download", false),
		Language:     provider.String(settings, "language", ""),
		Prompt:       provider.String(settings, "prompt", ""),
		Threads:      provider.Int(settings, "threads", 0),
		TempDir:      provider.String(settings, "temp_dir", ""),
	}), nil
}
