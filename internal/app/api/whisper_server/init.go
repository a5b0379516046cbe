package whisper_server

import (
	"os"
	"time"

	"whisper-bridge/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createWhisperServerProvider)
}

func createWhisperServerProvider(config map[string]interface{}) (provider.TranscriptionProvider, error) {
	settings := provider.SettingsOf(config)

	headers := provider.StringMap(settings, "custom_headers")
	if token := provider.String(provider.AuthOf(config), "token", ""); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return NewWhisperServerProvider(WhisperServerConfig{
		BaseURL:       provider.String(settings, "base_url", os.Getenv("WHISPER_SERVER_URL")),
		InferencePath: provider.String(settings, "inference_path", ""),
		LoadPath:      provider.String(settings, "load_path", ""),
		Timeout:       provider.Duration(settings, "timeout", 5*time.Minute),
		Language:      provider.String(settings, "language", ""),
		Temperature:   provider.Float(settings, "temperature", 0),
		Translate:     provider.Bool(settings, "translate", false),
		MaxLength:     provider.Int(settings, "max_length", 0),
		LoadModels:    provider.Bool(settings, "load_model", false),
		CustomHeaders: headers,
	}), nil
}
