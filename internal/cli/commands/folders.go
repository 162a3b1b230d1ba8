package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"FileVault/internal/config"
)

type folderDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []fileDTO `json:"files"`
}

type folderResponse struct {
	Message string    `json:"message"`
	Folder  folderDTO `json:"folder"`
}

// foldersCmd список папок
type foldersCmd struct{}

func (foldersCmd) Name() string        { return "folders" }
func (foldersCmd) Description() string { return "List your folders" }
func (foldersCmd) Usage() string       { return "folders" }

func (foldersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		Folders []folderDTO `json:"folders"`
	}
	if err := c.GetJSON(ctx, "/api/", &resp); err != nil {
		return explain(err)
	}
	if len(resp.Folders) == 0 {
		fmt.Fprintln(Out, "No folders")
		return nil
	}
	for _, f := range resp.Folders {
		fmt.Fprintf(Out, "- %s  %s\n", f.ID, f.Name)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(resp.Folders))
	return nil
}

type mkdirCmd struct{}

func (mkdirCmd) Name() string        { return "mkdir" }
func (mkdirCmd) Description() string { return "Create a folder" }
func (mkdirCmd) Usage() string       { return "mkdir <name>" }

func (mkdirCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp folderResponse
	if err := c.PostJSON(ctx, "/api/content/add-folder", map[string]string{"newFolder": args[0]}, &resp); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Created folder %s (id %s)\n", resp.Folder.Name, resp.Folder.ID)
	return nil
}

type renameCmd struct{}

func (renameCmd) Name() string        { return "rename" }
func (renameCmd) Description() string { return "Rename a folder" }
func (renameCmd) Usage() string       { return "rename <folderId> <name>" }

func (renameCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp folderResponse
	path := "/api/content/" + url.PathEscape(args[0]) + "/edit-folder"
	if err := c.PostJSON(ctx, path, map[string]string{"editFolder": args[1]}, &resp); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Folder %s renamed to %s\n", resp.Folder.ID, resp.Folder.Name)
	return nil
}

type rmdirCmd struct{}

func (rmdirCmd) Name() string        { return "rmdir" }
func (rmdirCmd) Description() string { return "Delete a folder with all its files" }
func (rmdirCmd) Usage() string       { return "rmdir <folderId>" }

func (rmdirCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	if err := c.PostJSON(ctx, "/api/content/"+url.PathEscape(args[0])+"/delete-folder", nil, nil); err != nil {
		return explain(err)
	}
	fmt.Fprintln(Out, "Folder deleted")
	return nil
}

func init() {
	RegisterCmd(foldersCmd{})
	RegisterCmd(mkdirCmd{})
	RegisterCmd(renameCmd{})
	RegisterCmd(rmdirCmd{})
}
