package authorization

import (
	"context"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	ObjectProduct      = "product"
	ObjectInventory    = "inventory"
	ObjectPurchase     = "purchase"
	ObjectSale         = "sale"
	ObjectReturn       = "return"
	ObjectRecipient    = "recipient"
	ObjectAlert        = "alert"
	ObjectAlertLog     = "alert_log"
	ObjectDashboard    = "dashboard"
	ObjectUser         = "user"
	ObjectVerification = "verification"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionRun    = "run"
	ActionSend   = "send"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer loaded with the built-in role policies.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		obslogger.WithContext(ctx, s.log).Info("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subject(role string) string {
	return fmt.Sprintf("role:%s", role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Staff
		{"role:user", ObjectProduct, ActionView},
		{"role:user", ObjectInventory, ActionView},
		{"role:user", ObjectInventory, ActionUpdate},
		{"role:user", ObjectPurchase, ActionView},
		{"role:user", ObjectPurchase, ActionCreate},
		{"role:user", ObjectSale, ActionView},
		{"role:user", ObjectSale, ActionCreate},
		{"role:user", ObjectReturn, ActionView},
		{"role:user", ObjectRecipient, ActionView},
		{"role:user", ObjectDashboard, ActionView},

		// Admin
		{"role:admin", ObjectProduct, ActionCreate},
		{"role:admin", ObjectProduct, ActionUpdate},
		{"role:admin", ObjectReturn, ActionCreate},
		{"role:admin", ObjectReturn, ActionUpdate},
		{"role:admin", ObjectReturn, ActionDelete},
		{"role:admin", ObjectRecipient, ActionCreate},
		{"role:admin", ObjectRecipient, ActionUpdate},
		{"role:admin", ObjectRecipient, ActionDelete},
		{"role:admin", ObjectAlert, ActionRun},
		{"role:admin", ObjectAlertLog, ActionView},
		{"role:admin", ObjectUser, ActionView},
		{"role:admin", ObjectUser, ActionCreate},
		{"role:admin", ObjectUser, ActionUpdate},
		{"role:admin", ObjectVerification, ActionSend},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	if _, err := enforcer.AddGroupingPolicy("role:admin", "role:user"); err != nil {
		return err
	}
	return nil
}
