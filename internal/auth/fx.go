package auth

import (
	"github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/repository"
	"github.com/smallbiznis/stockroom/internal/auth/service"
	"github.com/smallbiznis/stockroom/internal/auth/session"
	"github.com/smallbiznis/stockroom/internal/verification"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
	fx.Provide(provideCodeVerifier),
)

func provideCodeVerifier(v *verification.Service) domain.CodeVerifier {
	return v
}
