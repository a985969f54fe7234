package authorization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer()
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		role, object, action string
		allowed              bool
	}{
		{"user", ObjectProduct, ActionView, true},
		{"user", ObjectSale, ActionCreate, true},
		{"user", ObjectInventory, ActionUpdate, true},
		{"user", ObjectProduct, ActionCreate, false},
		{"user", ObjectReturn, ActionDelete, false},
		{"user", ObjectAlert, ActionRun, false},
		{"user", ObjectUser, ActionView, false},
		{"admin", ObjectProduct, ActionCreate, true},
		{"admin", ObjectSale, ActionCreate, true},
		{"Admin", ObjectAlertLog, ActionView, true},
		{"admin", ObjectVerification, ActionSend, true},
		{"guest", ObjectProduct, ActionView, false},
	}
	for _, tc := range cases {
		err := svc.Authorize(ctx, tc.role, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s %s", tc.role, tc.object, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s %s", tc.role, tc.object, tc.action)
		}
	}
}

func TestAuthorize_InvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "", ObjectProduct, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "user", " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, "user", ObjectProduct, ""), ErrInvalidAction)
}
