package salereturn

import (
	"github.com/smallbiznis/stockroom/internal/salereturn/repository"
	"github.com/smallbiznis/stockroom/internal/salereturn/service"
	"go.uber.org/fx"
)

var Module = fx.Module("salereturn.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
