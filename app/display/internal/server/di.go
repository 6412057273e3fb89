package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/engine"
	"github.com/iWorld-y/trade_compass/app/display/internal/data"
	"github.com/iWorld-y/trade_compass/app/display/internal/repo"
	"github.com/iWorld-y/trade_compass/app/display/internal/service"
	"github.com/iWorld-y/trade_compass/app/display/internal/usecase"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewGRPCServer,

	// Engine providers
	NewCompassEngine,
	wire.Bind(new(repo.MarketAnalyzer), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewAnalysisRepo,

	// UseCase providers
	usecase.NewAnalysisUseCase,

	// Service providers
	service.NewCompassService,
)
