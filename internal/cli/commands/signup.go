package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"FileVault/internal/cli/api"
	"FileVault/internal/config"
)

type SignUpRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type signupCmd struct{}

func (signupCmd) Name() string        { return "signup" }
func (signupCmd) Description() string { return "Create a new account" }
func (signupCmd) Usage() string       { return "signup <name> <password>" }

func (signupCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var resp struct {
		Data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	req := SignUpRequest{Username: args[0], Password: args[1], ConfirmPassword: args[1]}
	if err := anonClient(cfg).PostJSON(ctx, "/api/user/sign-up", req, &resp); err != nil {
		if api.IsStatus(err, http.StatusConflict) {
			return errors.New("name already in use")
		}
		return err
	}
	fmt.Fprintf(Out, "User %s created (id %s). Now run: fvcli login %s <password>\n", resp.Data.Name, resp.Data.ID, resp.Data.Name)
	return nil
}

func init() { RegisterCmd(signupCmd{}) }
