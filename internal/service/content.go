package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"FileVault/internal/model"
	"FileVault/internal/repo"
	"FileVault/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService папки и файлы пользователя. Все обращения к репозиториям идут
// с userID владельца; чужой ресурс для сервиса выглядит как отсутствующий.
type ContentService struct {
	folders repo.FolderRepository
	files   repo.FileRepository
	store   storage.BlobStore
	linkTTL time.Duration
	maxSize int64
	logger  *zap.SugaredLogger
}

func NewContentService(
	folders repo.FolderRepository,
	files repo.FileRepository,
	store storage.BlobStore,
	linkTTL time.Duration,
	maxSize int64,
	logger *zap.SugaredLogger,
) *ContentService {
	return &ContentService{
		folders: folders,
		files:   files,
		store:   store,
		linkTTL: linkTTL,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Upload входные данные загрузки файла.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Link подписанная ссылка на скачивание.
type Link struct {
	URL       string
	ExpiresAt time.Time
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *ContentService) CreateFolder(ctx context.Context, userID, name string) (*model.Folder, error) {
	name, err := normalizeFolderName("newFolder", name)
	if err != nil {
		return nil, err
	}
	f := &model.Folder{Name: name, UserID: userID}
	if err := s.folders.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

func (s *ContentService) GetFolder(ctx context.Context, userID, folderID string) (*model.Folder, error) {
	f, err := s.folders.GetByID(ctx, userID, folderID)
	if err != nil {
		return nil, notFound(err, "get folder")
	}
	return f, nil
}

func (s *ContentService) ListFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	list, err := s.folders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	if list == nil {
		list = []model.Folder{}
	}
	return list, nil
}

func (s *ContentService) RenameFolder(ctx context.Context, userID, folderID, name string) (*model.Folder, error) {
	name, err := normalizeFolderName("editFolder", name)
	if err != nil {
		return nil, err
	}
	if err := s.folders.Rename(ctx, userID, folderID, name); err != nil {
		return nil, notFound(err, "rename folder")
	}
	return s.GetFolder(ctx, userID, folderID)
}

// DeleteFolder удаляет папку каскадно: сначала объекты файлов из хранилища,
// затем записи папки и файлов одной транзакцией. Ошибка хранилища прерывает
// операцию до изменения БД.
func (s *ContentService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	f, err := s.folders.GetWithFiles(ctx, userID, folderID)
	if err != nil {
		return notFound(err, "get folder")
	}

	if len(f.Files) > 0 {
		refs := make([]string, 0, len(f.Files))
		for _, file := range f.Files {
			refs = append(refs, file.StorageRef)
		}
		if err := s.store.Remove(ctx, refs...); err != nil {
			s.logger.Errorw("DeleteFolder: storage remove failed", "folder_id", folderID, "error", err)
			return fmt.Errorf("%w: remove folder objects: %v", ErrStorage, err)
		}
	}

	if err := s.folders.Delete(ctx, userID, folderID); err != nil {
		return notFound(err, "delete folder")
	}
	return nil
}

// ListFiles папка вместе с файлами.
func (s *ContentService) ListFiles(ctx context.Context, userID, folderID string) (*model.Folder, error) {
	f, err := s.folders.GetWithFiles(ctx, userID, folderID)
	if err != nil {
		return nil, notFound(err, "list files")
	}
	return f, nil
}

func (s *ContentService) GetFile(ctx context.Context, userID, fileID string) (*model.File, error) {
	f, err := s.files.GetByID(ctx, userID, fileID)
	if err != nil {
		return nil, notFound(err, "get file")
	}
	return f, nil
}

// UploadFile сначала пишет объект в хранилище, затем запись в БД.
// Если запись в БД не удалась, объект удаляется обратно (best effort).
func (s *ContentService) UploadFile(ctx context.Context, userID, folderID string, up Upload) (*model.File, error) {
	if _, err := s.folders.GetByID(ctx, userID, folderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	name, err := normalizeFileName(up.Name)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}
	exists, err := s.files.ExistsByName(ctx, folderID, name)
	if err != nil {
		return nil, fmt.Errorf("check file name: %w", err)
	}
	if exists {
		return nil, ErrFileExists
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileID := uuid.NewString()
	ref, err := s.store.Upload(ctx, storage.ObjectKey(userID, folderID, fileID, name), up.Body, up.Size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return nil, ErrFileExists
		}
		s.logger.Errorw("UploadFile: storage upload failed", "folder_id", folderID, "name", name, "error", err)
		return nil, fmt.Errorf("%w: upload: %v", ErrStorage, err)
	}

	file := &model.File{
		ID:          fileID,
		Name:        name,
		Size:        up.Size,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
		StorageRef:  ref,
		FolderID:    folderID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), ref); rmErr != nil {
			s.logger.Errorw("UploadFile: orphaned object", "ref", ref, "error", rmErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFileExists
		}
		return nil, fmt.Errorf("create file: %w", err)
	}
	return file, nil
}

// DeleteFile удаляет объект, а потом запись: битой ссылки в БД не остаётся,
// при сбое между шагами может остаться лишь осиротевший объект.
func (s *ContentService) DeleteFile(ctx context.Context, userID, folderID, fileID string) error {
	f, err := s.files.GetInFolder(ctx, userID, folderID, fileID)
	if err != nil {
		return notFound(err, "get file")
	}
	if err := s.store.Remove(ctx, f.StorageRef); err != nil {
		s.logger.Errorw("DeleteFile: storage remove failed", "file_id", fileID, "ref", f.StorageRef, "error", err)
		return fmt.Errorf("%w: remove object: %v", ErrStorage, err)
	}
	if err := s.files.Delete(ctx, userID, folderID, fileID); err != nil {
		return notFound(err, "delete file")
	}
	return nil
}

// FileLink подписанная ссылка на файл. folderID может быть пустым — тогда файл ищется
// среди всех папок пользователя.
func (s *ContentService) FileLink(ctx context.Context, userID, folderID, fileID string) (*model.File, *Link, error) {
	var (
		f   *model.File
		err error
	)
	if folderID == "" {
		f, err = s.files.GetByID(ctx, userID, fileID)
	} else {
		f, err = s.files.GetInFolder(ctx, userID, folderID, fileID)
	}
	if err != nil {
		return nil, nil, notFound(err, "get file")
	}
	link, err := s.sign(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return f, link, nil
}

func (s *ContentService) sign(ctx context.Context, f *model.File) (*Link, error) {
	exp := time.Now().Add(s.linkTTL)
	u, err := s.store.SignedURL(ctx, f.StorageRef, s.linkTTL)
	if err != nil {
		s.logger.Errorw("FileLink: sign failed", "file_id", f.ID, "error", err)
		return nil, fmt.Errorf("%w: sign url: %v", ErrStorage, err)
	}
	return &Link{URL: u, ExpiresAt: exp}, nil
}

// SignFile выдаёт ссылку на файл, полученный из UploadFile/GetFile.
func (s *ContentService) SignFile(ctx context.Context, f *model.File) (*Link, error) {
	return s.sign(ctx, f)
}

// OpenFile открывает содержимое файла для проксирующего скачивания.
func (s *ContentService) OpenFile(ctx context.Context, userID, fileID string) (*model.File, io.ReadCloser, error) {
	f, err := s.files.GetByID(ctx, userID, fileID)
	if err != nil {
		return nil, nil, notFound(err, "get file")
	}
	rc, err := s.store.Open(ctx, f.StorageRef)
	if err != nil {
		s.logger.Errorw("OpenFile: storage open failed", "file_id", fileID, "error", err)
		return nil, nil, fmt.Errorf("%w: open object: %v", ErrStorage, err)
	}
	return f, rc, nil
}
