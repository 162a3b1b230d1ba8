package commands

import (
	"context"
	"fmt"

	"FileVault/internal/config"
)

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the current user" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := c.GetJSON(ctx, "/api/current-user", &resp); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "%s (id %s) @ %s\n", resp.User.Name, resp.User.ID, cfg.ServerURL)
	return nil
}

func init() { RegisterCmd(whoamiCmd{}) }
