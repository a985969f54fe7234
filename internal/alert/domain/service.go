package domain

import (
	"context"
	"fmt"
	"time"
)

type Service interface {
	// Dispatch never fails; problems are logged and counted.
	Dispatch(ctx context.Context, productID int64, newQuantity int)
	CheckAll(ctx context.Context) (CheckResult, error)
	ListLogs(ctx context.Context, limit int) ([]LogResponse, error)
}

// Mailer reports true only when the SMTP server accepted the message.
type Mailer interface {
	SendLowStock(ctx context.Context, to, productName string, quantity int) bool
}

type CheckResult struct {
	Message           string `json:"message"`
	LowInventoryCount int    `json:"lowInventoryCount"`
	SentCount         int    `json:"sentCount"`
	FailedCount       int    `json:"failedCount"`
}

type LogResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	Threshold   int       `json:"threshold"`
	Email       string    `json:"email"`
	Success     bool      `json:"success"`
	SentAt      time.Time `json:"sentAt"`
}

const DefaultLogLimit = 50

const (
	MessageNoLowStock    = "没有发现低库存商品"
	MessageNoRecipients  = "没有启用的邮件通知设置"
	messageCheckComplete = "检查完成：发现 %d 个低库存商品，成功发送 %d 封邮件，失败 %d 封"
)

func CheckCompleteMessage(low, sent, failed int) string {
	return fmt.Sprintf(messageCheckComplete, low, sent, failed)
}
