package services

import (
	"context"

	"whisper-bridge/internal/app/bridge"
	"whisper-bridge/internal/app/config"
)

type engineService struct {
	engines       *config.EnginesConfig
	defaultEngine string
	factory       bridge.ProviderFactory
}

// NewEngineService reports on engines built the same way the bridge builds them.
func NewEngineService(engines *config.EnginesConfig, defaultEngine string) EngineService {
	return &engineService{engines: engines, defaultEngine: defaultEngine}
}

func (s *engineService) ListEngines(ctx context.Context) []bridge.EngineStatus {
	return bridge.DescribeEngines(s.engines, s.defaultEngine, s.factory)
}
