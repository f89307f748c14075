package di

import (
	"studycapture/application/services"
	"studycapture/infrastructure/config"
	"studycapture/infrastructure/observability"
	"studycapture/infrastructure/persistence/sqlite"
	"studycapture/interfaces/http/rest"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     *sqlite.Store
	Pipeline  *services.CapturePipeline
	Collector *observability.Collector
	Tracer    *observability.TracerProvider
	Router    *rest.Router
}
