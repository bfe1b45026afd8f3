package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/robobooks/internal/clock"
	"github.com/smallbiznis/robobooks/internal/config"
	"github.com/smallbiznis/robobooks/internal/migration"
	"github.com/smallbiznis/robobooks/internal/observability"
	"github.com/smallbiznis/robobooks/internal/scheduler"
	"github.com/smallbiznis/robobooks/internal/server"
	"github.com/smallbiznis/robobooks/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
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
