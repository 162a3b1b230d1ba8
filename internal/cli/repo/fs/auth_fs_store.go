package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"FileVault/internal/cli/repo"
)

// ErrNoToken — клиент ещё не входил или выполнил logout.
var ErrNoToken = errors.New("not logged in")

// AuthFSStore — файловое хранилище токена и контекста пользователя для CLI.
// Path — файл токена; логин лежит рядом в last_login.
type AuthFSStore struct {
	Path string
}

var (
	_ repo.TokenStore       = AuthFSStore{}
	_ repo.UserContextStore = AuthFSStore{}
)

func NewAuthFSStore(tokenFile string) AuthFSStore {
	return AuthFSStore{Path: tokenFile}
}

func (s AuthFSStore) tokenPath() (string, error) {
	if s.Path == "" {
		return "", errors.New("token file path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return "", err
	}
	return s.Path, nil
}

func (s AuthFSStore) lastLoginPath() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "last_login"), nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	tok, err := readTrimmed(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", err
	}
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Clear удаляет токен и сохранённый логин.
func (s AuthFSStore) Clear() error {
	for _, pathFn := range []func() (string, error){s.tokenPath, s.lastLoginPath} {
		p, err := pathFn()
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// SaveLogin сохраняет логин пользователя в файл.
func (s AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	p, err := s.lastLoginPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(login), 0o600)
}

// LoadLogin читает логин пользователя из файла.
func (s AuthFSStore) LoadLogin() (string, error) {
	p, err := s.lastLoginPath()
	if err != nil {
		return "", err
	}
	login, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if login == "" {
		return "", errors.New("no stored login")
	}
	return login, nil
}

// readTrimmed читает файл и обрезает завершающие переводы строки/пробелы.
func readTrimmed(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), " \t\r\n"), nil
}
