package model

import "time"

// Category groups todos of one user (work, health, study, etc.).
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_user_category_name,unique" json:"userId"`
	Name      string    `gorm:"not null;index:idx_user_category_name,unique" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
