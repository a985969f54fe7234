package alert

import (
	"github.com/smallbiznis/stockroom/internal/alert/repository"
	"github.com/smallbiznis/stockroom/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

// ConsumerModule subscribes the dispatcher to stock events. Binaries that
// only serve HTTP in kafka mode leave it out.
var ConsumerModule = fx.Module("alert.consumer",
	fx.Provide(NewConsumer),
	fx.Invoke(RegisterConsumer),
)
