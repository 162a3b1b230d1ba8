package commands

import (
	"errors"
	"net/http"

	"FileVault/internal/cli/api"
	"FileVault/internal/cli/repo"
	fsrepo "FileVault/internal/cli/repo/fs"
	"FileVault/internal/config"
)

var errNotLoggedIn = errors.New("not logged in, run: fvcli login <name> <password>")

// sessionStore токен и последний логин пользователя.
type sessionStore interface {
	repo.TokenStore
	repo.UserContextStore
}

func authStore(cfg *config.Config) sessionStore {
	return fsrepo.NewAuthFSStore(cfg.TokenFile)
}

// anonClient клиент без токена (signup, login).
func anonClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, "")
}

// authedClient клиент с сохранённым токеном.
func authedClient(cfg *config.Config) (*api.Client, error) {
	tok, err := authStore(cfg).Load()
	if err != nil {
		if errors.Is(err, fsrepo.ErrNoToken) {
			return nil, errNotLoggedIn
		}
		return nil, err
	}
	return api.NewClient(cfg.ServerURL, tok), nil
}

// explain делает ответ 401 понятным пользователю.
func explain(err error) error {
	if api.IsStatus(err, http.StatusUnauthorized) {
		return errors.New("session expired or invalid, please login again")
	}
	return err
}
