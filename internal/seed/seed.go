package seed

import (
	"context"
	"strings"

	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module seeds bootstrap data. It must come after migration.Module.
var Module = fx.Module("seed",
	fx.Invoke(func(svc authdomain.Service, cfg config.Config, log *zap.Logger) error {
		return EnsureAdmin(context.Background(), svc, cfg.Bootstrap, log)
	}),
)

// EnsureAdmin creates the bootstrap admin account on an empty install.
// Without a configured password nothing is seeded.
func EnsureAdmin(ctx context.Context, svc authdomain.Service, cfg config.BootstrapConfig, log *zap.Logger) error {
	log = log.Named("seed")
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		log.Info("bootstrap admin password not set, skipping admin seed")
		return nil
	}

	created, err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("bootstrap admin created", zap.String("username", cfg.AdminUsername))
	}
	return nil
}
