package model

import "time"

// Tag is a global, case-insensitive label. Name is stored lower-cased.
// UsedAt is bumped whenever a todo write resolves the tag.
type Tag struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Name   string    `gorm:"not null;uniqueIndex" json:"name"`
	UsedAt time.Time `gorm:"index" json:"-"`
}

// TodoTag links a todo to a tag. The pair is the primary key.
type TodoTag struct {
	TodoID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	Tag    Tag  `gorm:"foreignKey:TagID"`
}
