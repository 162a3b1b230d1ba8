package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder — папка пользователя. UserID задаётся при создании и больше не меняется.
type Folder struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Name   string `gorm:"not null;size:255" json:"name"`
	UserID string `gorm:"not null;index;type:uuid" json:"userId"`

	// Связи
	Files []File `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"files,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (f *Folder) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
