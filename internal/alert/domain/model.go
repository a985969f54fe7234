package domain

import "time"

// Threshold is the box count at or below which a product is low on stock.
const Threshold = 2

// AlertLog is one attempt to notify one recipient about one product.
// (ProductID, Email, DayKey) is unique so a recipient is attempted at most
// once per product per day.
type AlertLog struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID   int64     `json:"product_id" gorm:"not null;uniqueIndex:ux_alert_logs_product_email_day,priority:1"`
	ProductName string    `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Threshold   int       `json:"threshold" gorm:"not null"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_alert_logs_product_email_day,priority:2"`
	DayKey      string    `json:"day_key" gorm:"type:char(10);not null;uniqueIndex:ux_alert_logs_product_email_day,priority:3"`
	Success     bool      `json:"success" gorm:"not null"`
	SentAt      time.Time `json:"sent_at" gorm:"not null;index:ix_alert_logs_sent_at"`
}

func (AlertLog) TableName() string { return "alert_logs" }

const dayKeyLayout = "2006-01-02"

// DayKey is the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayKeyLayout)
}
