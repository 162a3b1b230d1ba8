package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File — метаданные загруженного файла. Само содержимое лежит в blob-хранилище по StorageRef.
type File struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"not null;size:255;uniqueIndex:idx_files_folder_name" json:"name"`
	Size        int64     `gorm:"not null" json:"size"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `gorm:"not null" json:"uploadedAt"`
	StorageRef  string    `gorm:"not null" json:"-"`
	FolderID    string    `gorm:"not null;type:uuid;uniqueIndex:idx_files_folder_name" json:"folderId"`
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	return nil
}
