//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"
	"go.uber.org/zap/zapcore"

	"github.com/zeusync/entitykit/internal/core/observability/log"
	"github.com/zeusync/entitykit/pkg/registry"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(zapcore.DebugLevel)
}

func ProvideRegistry() *registry.Registry {
	wire.Build(registry.Current)
	return registry.New()
}
