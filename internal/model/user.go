package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User — владелец папок и файлов. Хеш пароля наружу никогда не сериализуется.
type User struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string    `gorm:"not null;uniqueIndex;size:64" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Folders []Folder `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeCreate выдаёт UUID, если он не задан явно.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
