package model

import "time"

// Todo is a single task of a user. A nil CompletedAt means not done.
type Todo struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null;default:''" json:"description"`
	DueDate     time.Time  `gorm:"not null;index" json:"dueDate"`
	CategoryID  uint       `gorm:"not null;index" json:"categoryId"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Category Category  `gorm:"foreignKey:CategoryID" json:"category"`
	Tags     []TodoTag `gorm:"foreignKey:TodoID" json:"-"`
}

// Done reports whether the todo has been completed.
func (t *Todo) Done() bool {
	return t.CompletedAt != nil
}
