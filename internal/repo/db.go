package repo

import (
	"errors"
	"fmt"
	"strings"

	"FileVault/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ErrNotFound — sentinel для «записи нет или она принадлежит другому пользователю».
// Совпадает с gorm.ErrRecordNotFound, чтобы find и write-операции отдавали одно и то же.
var ErrNotFound = gorm.ErrRecordNotFound

// InitDB открывает соединение с БД и выполняет миграции.
// DSN вида postgres://... или с host= уходит в Postgres, остальное считается DSN sqlite (modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	db, err := gorm.Open(dialectorFor(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет схему для всех моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Folder{}, &model.File{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if isPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// ownedFolderIDs подзапрос id папок пользователя — фильтр владения для файлов.
func ownedFolderIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&model.Folder{}).Select("id").Where("user_id = ?", userID)
}
