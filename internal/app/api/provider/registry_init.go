package provider

import (
	"fmt"
	"sort"
	"sync"

	apperrors "whisper-bridge/internal/app/errors"
)

// ProviderCreator is a function that creates a provider from configuration
type ProviderCreator func(config map[string]interface{}) (TranscriptionProvider, error)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a provider creator function
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrEngineNotFound, "provider type %s not registered", providerType)
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types in name order
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// NewProvider creates a provider of the given type and validates its configuration
func NewProvider(providerType string, config map[string]interface{}) (TranscriptionProvider, error) {
	creator, err := GetProviderCreator(providerType)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = map[string]interface{}{}
	}

	p, err := creator(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", providerType, err)
	}
	if err := p.ValidateConfiguration(); err != nil {
		return nil, fmt.Errorf("%s provider configuration: %w", providerType, err)
	}
	return p, nil
}
