//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"whisper-bridge/internal/api/server"
	appconfig "whisper-bridge/internal/app/config"
	"whisper-bridge/internal/config"
)

// InitializeServer builds the HTTP host. The cleanup closes history and cache.
func InitializeServer(ctx context.Context, settings *config.Settings, engines *appconfig.EnginesConfig, logger *zap.Logger) (*server.Server, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}
