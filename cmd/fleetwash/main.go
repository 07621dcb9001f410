package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/washworks/fleetwash/internal/clock"
	"github.com/washworks/fleetwash/internal/migration"
	"github.com/washworks/fleetwash/internal/observability"
	"github.com/washworks/fleetwash/internal/scheduler"
	"github.com/washworks/fleetwash/internal/server"
	"github.com/washworks/fleetwash/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
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
