//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final binary.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/iWorld-y/trade_compass/app/display/internal/conf"
	"github.com/iWorld-y/trade_compass/app/display/internal/server"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Compass, *conf.Job, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		newApp,
	))
}
