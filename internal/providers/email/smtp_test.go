package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_LowStock(t *testing.T) {
	p := NewSMTP(Config{})

	body, err := p.Render("low_stock", map[string]any{
		"ProductName": "Starlight",
		"Quantity":    1,
		"Threshold":   2,
		"SentAt":      "2025-03-01 09:00:00",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "商品名称：Starlight")
	assert.Contains(t, body, "警戒线：2箱")
	assert.Contains(t, body, "2025-03-01 09:00:00")
}

func TestRender_EscapesHTML(t *testing.T) {
	p := NewSMTP(Config{})

	body, err := p.Render("verification_code", map[string]any{
		"Email":      "<b>x</b>@example.com",
		"Code":       "123456",
		"TTLMinutes": 5,
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<b>x</b>")
	assert.Contains(t, body, "123456")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := NewSMTP(Config{}).Render("missing", nil)
	assert.Error(t, err)
}

func TestSend_NotConfigured(t *testing.T) {
	err := NewSMTP(Config{}).Send(context.Background(), []string{"a@example.com"}, "s", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildMessage_EncodesSubject(t *testing.T) {
	msg := string(buildMessage("from@example.com", []string{"a@example.com", "b@example.com"}, "库存警报", "<p>x</p>"))

	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?UTF-8?b?")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}
