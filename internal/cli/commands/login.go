package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"FileVault/internal/cli/api"
	"FileVault/internal/config"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store bearer token" }
func (loginCmd) Usage() string       { return "login <name> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var resp loginResponse
	err := anonClient(cfg).PostJSON(ctx, "/api/login", LoginRequest{Username: args[0], Password: args[1]}, &resp)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			return errors.New("invalid name or password")
		}
		return err
	}
	if resp.Token == "" {
		return errors.New("server returned no token")
	}

	st := authStore(cfg)
	if err := st.Save(resp.Token); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := st.SaveLogin(resp.User.Username); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	fmt.Fprintf(Out, "Logged in as %s (token valid until %s)\n", resp.User.Username, resp.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
