package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/alert"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/events"
	"github.com/smallbiznis/stockroom/internal/inventory"
	"github.com/smallbiznis/stockroom/internal/observability"
	"github.com/smallbiznis/stockroom/internal/product"
	"github.com/smallbiznis/stockroom/internal/providers"
	"github.com/smallbiznis/stockroom/internal/ratelimit"
	"github.com/smallbiznis/stockroom/internal/recipient"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/fx"
)

// notifier consumes stock events and sends low-stock alerts.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services required by the dispatcher
		events.Module,
		providers.Module,
		ratelimit.Module,
		product.Module,
		inventory.Module,
		recipient.Module,
		alert.Module,

		// No server module!
		alert.ConsumerModule,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}
	return node
}
