package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/propworks/rentaudit/internal/audit"
	"github.com/propworks/rentaudit/internal/config"
	"github.com/propworks/rentaudit/internal/observability"
	"github.com/propworks/rentaudit/internal/server"
	"github.com/propworks/rentaudit/internal/storage"
	"github.com/propworks/rentaudit/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		storage.Module,
		audit.Module,
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
