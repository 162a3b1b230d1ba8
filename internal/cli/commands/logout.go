package commands

import (
	"context"
	"fmt"

	"FileVault/internal/config"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored token" }
func (logoutCmd) Usage() string       { return "logout" }

// Run сервер токены не отзывает, поэтому достаточно удалить их локально.
func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := authStore(cfg).Clear(); err != nil {
		return fmt.Errorf("clear auth: %w", err)
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
