package repo

import (
	"context"

	"FileVault/internal/model"

	"gorm.io/gorm"
)

// FolderRepository доступ к папкам. Каждый метод принимает userID и фильтрует по нему
// в том же запросе: чужая папка неотличима от несуществующей (ErrNotFound).
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) error
	GetByID(ctx context.Context, userID, id string) (*model.Folder, error)
	GetWithFiles(ctx context.Context, userID, id string) (*model.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]model.Folder, error)
	Rename(ctx context.Context, userID, id, name string) error
	// Delete удаляет папку вместе с записями её файлов в одной транзакции.
	Delete(ctx context.Context, userID, id string) error
}

type folderRepo struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) Create(ctx context.Context, f *model.Folder) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *folderRepo) GetByID(ctx context.Context, userID, id string) (*model.Folder, error) {
	var f model.Folder
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *folderRepo) GetWithFiles(ctx context.Context, userID, id string) (*model.Folder, error) {
	var f model.Folder
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	if f.Files == nil {
		f.Files = []model.File{}
	}
	return &f, nil
}

func (r *folderRepo) ListByUser(ctx context.Context, userID string) ([]model.Folder, error) {
	var out []model.Folder
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *folderRepo) Rename(ctx context.Context, userID, id, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *folderRepo) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Folder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// папка уже подтверждена как своя, файлы удаляем по folder_id
		return tx.Where("folder_id = ?", id).Delete(&model.File{}).Error
	})
}
