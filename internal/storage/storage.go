// Package storage — blob-хранилище содержимого файлов. Для сервиса это непрозрачное
// хранилище: загрузить, подписать ссылку, прочитать, удалить.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// BlobStore контракт blob-хранилища.
type BlobStore interface {
	// Upload записывает объект и возвращает ссылку (ref), по которой он адресуется дальше.
	// Существующий объект не перезаписывается: ErrObjectExists.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// SignedURL выдаёт ссылку на скачивание, действующую ttl.
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	// Remove удаляет объекты; отсутствующие объекты не считаются ошибкой.
	Remove(ctx context.Context, refs ...string) error
}

// ObjectKey собирает ключ userID/folderID/fileID/name. fileID делает ключ уникальным
// для каждой загрузки: осиротевший объект не занимает имя, а старая подписанная ссылка
// не откроет файл, загруженный позже под тем же именем.
func ObjectKey(userID, folderID, fileID, name string) string {
	return userID + "/" + folderID + "/" + fileID + "/" + name
}

// cleanKey нормализует ключ и отсекает попытки выйти за пределы корня.
func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") || strings.ContainsRune(key, 0) {
		return "", ErrInvalidKey
	}
	k := path.Clean("/" + key)[1:]
	if k == "" || k != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return k, nil
}
