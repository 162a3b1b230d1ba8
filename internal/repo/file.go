package repo

import (
	"context"

	"FileVault/internal/model"

	"gorm.io/gorm"
)

// FileRepository доступ к метаданным файлов. Владение проверяется через папку:
// folder_id IN (SELECT id FROM folders WHERE user_id = ?) в том же запросе.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, userID, id string) (*model.File, error)
	GetInFolder(ctx context.Context, userID, folderID, id string) (*model.File, error)
	ExistsByName(ctx context.Context, folderID, name string) (bool, error)
	Delete(ctx context.Context, userID, folderID, id string) error
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fileRepo) GetByID(ctx context.Context, userID, id string) (*model.File, error) {
	db := r.db.WithContext(ctx)
	var f model.File
	err := db.Where("id = ? AND folder_id IN (?)", id, ownedFolderIDs(db, userID)).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) GetInFolder(ctx context.Context, userID, folderID, id string) (*model.File, error) {
	db := r.db.WithContext(ctx)
	var f model.File
	err := db.Where("id = ? AND folder_id = ? AND folder_id IN (?)", id, folderID, ownedFolderIDs(db, userID)).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ExistsByName вызывается только после проверки владения папкой.
func (r *fileRepo) ExistsByName(ctx context.Context, folderID, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.File{}).
		Where("folder_id = ? AND name = ?", folderID, name).
		Count(&n).Error
	return n > 0, err
}

func (r *fileRepo) Delete(ctx context.Context, userID, folderID, id string) error {
	db := r.db.WithContext(ctx)
	res := db.Where("id = ? AND folder_id = ? AND folder_id IN (?)", id, folderID, ownedFolderIDs(db, userID)).
		Delete(&model.File{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
