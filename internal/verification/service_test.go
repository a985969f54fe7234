package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Send(ctx context.Context, to []string, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

func (m *mockProvider) SendTemplate(ctx context.Context, to []string, subject, name string, data any) error {
	return m.Called(ctx, to, subject, name, data).Error(0)
}

func newTestService(provider *mockProvider, notifyTo string) (*Service, *MemoryStore) {
	store := NewMemoryStore(DefaultTTL, clock.NewFakeClock(time.Now()))
	return NewService(store, provider, notifyTo, DefaultTTL, zap.NewNop()), store
}

func TestSend_MailsCodeToAdmin(t *testing.T) {
	provider := &mockProvider{}
	var sent map[string]any
	provider.On("SendTemplate", mock.Anything, []string{"admin@example.com"}, "管理员操作验证码", "verification_code", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(4).(map[string]any) }).
		Return(nil).Once()

	svc, store := newTestService(provider, "admin@example.com")
	defer svc.Close()

	require.NoError(t, svc.Send(context.Background(), "new.user@example.com"))
	provider.AssertExpectations(t)

	assert.Equal(t, "new.user@example.com", sent["Email"])
	assert.Equal(t, 5, sent["TTLMinutes"])
	code := sent["Code"].(string)
	assert.Equal(t, 1, store.len())
	assert.True(t, svc.Verify(context.Background(), "new.user@example.com", code))
}

func TestSend_Failures(t *testing.T) {
	provider := &mockProvider{}
	provider.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	svc, _ := newTestService(provider, "admin@example.com")
	defer svc.Close()
	assert.ErrorIs(t, svc.Send(context.Background(), "x@example.com"), ErrSendFailed)
	assert.ErrorIs(t, svc.Send(context.Background(), "nope"), ErrInvalidEmail)

	unconfigured, _ := newTestService(provider, "")
	defer unconfigured.Close()
	assert.ErrorIs(t, unconfigured.Send(context.Background(), "x@example.com"), ErrNoNotifyAddress)
}
