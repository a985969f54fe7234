package domain

import "time"

// Recipient is an address that receives low-stock alerts while active.
type Recipient struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:ux_inventory_notifications_email"`
	IsActive  bool      `json:"is_active" gorm:"not null;index:ix_inventory_notifications_active"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Recipient) TableName() string { return "inventory_notifications" }
