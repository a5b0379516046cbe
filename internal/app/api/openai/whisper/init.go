package whisper

import (
	"os"

	"whisper-bridge/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from configuration
func createOpenAIProvider(config map[string]interface{}) (provider.TranscriptionProvider, error) {
	settings := provider.SettingsOf(config)

	apiKey := provider.String(provider.AuthOf(config), "api_key", "")
	if apiKey == "" {
		apiKey = provider.String(config, "api_key", os.Getenv("OPENAI_API_KEY"))
	}

	return NewRemoteTranscriber(Config{
		APIKey:      apiKey,
		BaseURL:     provider.String(settings, "base_url", os.Getenv("OPENAI_BASE_URL")),
		Model:       provider.String(settings, "model", ""),
		Language:    provider.String(settings, "language", ""),
		Prompt:      provider.String(settings, "prompt", ""),
		Temperature: float32(provider.Float(settings, "temperature", 0)),
	}), nil
}
