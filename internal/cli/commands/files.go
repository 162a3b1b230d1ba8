package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"FileVault/internal/config"
)

type fileDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"contentType"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	FolderID    string     `json:"folderId"`
	SignedURL   string     `json:"signedUrl"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

type filesCmd struct{}

func (filesCmd) Name() string        { return "files" }
func (filesCmd) Description() string { return "List files in a folder" }
func (filesCmd) Usage() string       { return "files <folderId>" }

func (filesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp folderResponse
	if err := c.GetJSON(ctx, "/api/content/folder/"+url.PathEscape(args[0])+"/files", &resp); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "%s:\n", resp.Folder.Name)
	if len(resp.Folder.Files) == 0 {
		fmt.Fprintln(Out, "  (empty)")
		return nil
	}
	for _, f := range resp.Folder.Files {
		fmt.Fprintf(Out, "- %s  %-30s %10d  %s\n", f.ID, f.Name, f.Size, f.UploadedAt.Local().Format(time.DateTime))
	}
	return nil
}

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a local file into a folder" }
func (uploadCmd) Usage() string       { return "upload <folderId> <path>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	src, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer src.Close()

	var resp struct {
		File fileDTO `json:"file"`
	}
	path := "/api/content/folder/" + url.PathEscape(args[0]) + "/upload-file"
	if err := c.Upload(ctx, path, "newFile", filepath.Base(args[1]), src, &resp); err != nil {
		return explain(err)
	}
	fmt.Fprintf(Out, "Uploaded %s (id %s, %d bytes)\n", resp.File.Name, resp.File.ID, resp.File.Size)
	if resp.File.SignedURL != "" {
		fmt.Fprintf(Out, "Link: %s\n", resp.File.SignedURL)
	}
	return nil
}

type infoCmd struct{}

func (infoCmd) Name() string        { return "info" }
func (infoCmd) Description() string { return "Show file details" }
func (infoCmd) Usage() string       { return "info <fileId>" }

func (infoCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		File fileDTO `json:"file"`
	}
	if err := c.GetJSON(ctx, "/api/content/files/"+url.PathEscape(args[0]), &resp); err != nil {
		return explain(err)
	}
	f := resp.File
	fmt.Fprintf(Out, "ID:       %s\nName:     %s\nSize:     %d\nType:     %s\nFolder:   %s\nUploaded: %s\n",
		f.ID, f.Name, f.Size, f.ContentType, f.FolderID, f.UploadedAt.Local().Format(time.RFC1123))
	return nil
}

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Delete a file" }
func (rmCmd) Usage() string       { return "rm <folderId> <fileId>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	path := "/api/content/files/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1]) + "/delete-file"
	if err := c.PostJSON(ctx, path, nil, nil); err != nil {
		return explain(err)
	}
	fmt.Fprintln(Out, "File deleted")
	return nil
}

type linkCmd struct{}

func (linkCmd) Name() string        { return "link" }
func (linkCmd) Description() string { return "Print a temporary download link" }
func (linkCmd) Usage() string       { return "link <folderId> <fileId>" }

func (linkCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}
	var resp struct {
		SignedURL string    `json:"signedUrl"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	path := "/api/content/files/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1]) + "/signed-url"
	if err := c.GetJSON(ctx, path, &resp); err != nil {
		return explain(err)
	}
	fmt.Fprintln(Out, resp.SignedURL)
	fmt.Fprintf(Out, "Expires: %s\n", resp.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

type downloadCmd struct{}

func (downloadCmd) Name() string        { return "download" }
func (downloadCmd) Description() string { return "Download a file to a local path or directory" }
func (downloadCmd) Usage() string       { return "download <fileId> <dest>" }

func (downloadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := authedClient(cfg)
	if err != nil {
		return err
	}

	// пишем во временный файл рядом с целью, чтобы не оставить обрезанный файл при ошибке
	dest := args[1]
	dir := dest
	if fi, err := os.Stat(dest); err != nil || !fi.IsDir() {
		dir = filepath.Dir(dest)
	}
	tmp, err := os.CreateTemp(dir, ".fvcli-download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, n, err := c.Download(ctx, "/api/download/"+url.PathEscape(args[0]), tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return explain(err)
	}

	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		if name == "" {
			return errors.New("server did not provide a file name, pass a file path as <dest>")
		}
		dest = filepath.Join(dest, filepath.Base(name))
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %s (%d bytes)\n", dest, n)
	return nil
}

func init() {
	RegisterCmd(filesCmd{})
	RegisterCmd(uploadCmd{})
	RegisterCmd(infoCmd{})
	RegisterCmd(rmCmd{})
	RegisterCmd(linkCmd{})
	RegisterCmd(downloadCmd{})
}
