package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/geofin/countrypulse/internal/clock"
	"github.com/geofin/countrypulse/internal/config"
	"github.com/geofin/countrypulse/internal/country"
	"github.com/geofin/countrypulse/internal/providers/exchangerate"
	"github.com/geofin/countrypulse/internal/providers/restcountries"
	"github.com/geofin/countrypulse/internal/scheduler"
	"github.com/geofin/countrypulse/internal/server"
	"github.com/geofin/countrypulse/internal/summary"
	"github.com/geofin/countrypulse/pkg/db"
	"github.com/geofin/countrypulse/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,

		// External sources and artifacts
		restcountries.Module,
		exchangerate.Module,
		summary.Module,

		// Functional domains
		country.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
