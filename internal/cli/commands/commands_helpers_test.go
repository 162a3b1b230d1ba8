package commands

import (
	"path/filepath"
	"testing"

	"FileVault/internal/config"
)

// withTempConfig конфиг клиента, у которого токен лежит в temp,
// чтобы артефакты (токен/логин) не попадали в настоящий каталог пользователя.
func withTempConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{TokenFile: filepath.Join(dir, "FileVault", "auth_token")}
}
