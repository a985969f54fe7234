package recipient

import (
	"github.com/smallbiznis/stockroom/internal/recipient/repository"
	"github.com/smallbiznis/stockroom/internal/recipient/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recipient.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
