package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/charstudio/internal/api"
	"github.com/dmitrijs2005/charstudio/internal/client/observer"
	"github.com/dmitrijs2005/charstudio/internal/common"
	"github.com/dmitrijs2005/charstudio/internal/filex"
	"github.com/dmitrijs2005/charstudio/internal/netx"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

func (a *App) Library(ctx context.Context) error {
	list, err := a.client.Library(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No characters yet. Use 'upload' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tNAME\tKEYWORDS")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Status, c.CharacterName, strings.Join(c.Keywords, ", "))
	}
	return w.Flush()
}

// Upload puts every file into storage through a presigned URL, starts a
// character from the uploaded paths and watches it.
func (a *App) Upload(ctx context.Context, files []string) error {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		data, err := readFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		ticket, err := a.client.UploadURL(ctx, filepath.Base(f))
		if err != nil {
			return err
		}
		if err := netx.UploadToPresignedURL(ctx, a.httpClient, ticket.URL, common.ImageContentType(ticket.Path), data); err != nil {
			return fmt.Errorf("upload %s: %w", f, err)
		}
		fmt.Fprintf(a.out, "Uploaded %s\n", f)
		paths = append(paths, ticket.Path)
	}

	id, err := a.client.StartTuning(ctx, paths)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Character %s created, analysis started\n", id)

	return a.Watch(ctx, id)
}

// Watch follows a character until it is ready or failed. Watching is
// read-only; leaving it never affects the character.
func (a *App) Watch(ctx context.Context, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := a.client.Watch(ctx, id)
	if err != nil {
		return err
	}

	o := observer.New(a.config.ReadyDelay)
	o.OnUpdate = func(c *api.Character) {
		fmt.Fprintf(a.out, "[%s] %s\n", c.ID, c.Status)
	}
	o.OnReady = func(c *api.Character) {
		a.printCharacter(c)
	}
	o.OnFailed = func(c *api.Character) {
		fmt.Fprintf(a.out, "Analysis of %s failed. Upload the images again to retry.\n", c.ID)
	}
	o.OnNotFound = func(id string) {
		fmt.Fprintf(a.out, "Character %s not found\n", id)
	}

	return o.Observe(ctx, id, stream)
}

func (a *App) Show(ctx context.Context, id string) error {
	c, err := a.client.Character(ctx, id)
	if err != nil {
		return err
	}
	a.printCharacter(c)

	if c.ImagePreviewURL != "" {
		if url, err := a.client.DownloadURL(ctx, c.ImagePreviewURL); err == nil {
			fmt.Fprintf(a.out, "Preview:     %s\n", url)
		}
	}
	return nil
}

// Generate renders the character in a scene and writes the PNG to out.
func (a *App) Generate(ctx context.Context, id, out, prompt string) error {
	fmt.Fprintln(a.out, "Generating, this can take a while...")

	encoded, err := a.client.Visualize(ctx, id, prompt)
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if err := filex.WriteFile(out, data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", out, len(data))
	return nil
}

func (a *App) URL(ctx context.Context, path string) error {
	url, err := a.client.DownloadURL(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

func (a *App) printCharacter(c *api.Character) {
	fmt.Fprintf(a.out, "ID:          %s\n", c.ID)
	fmt.Fprintf(a.out, "Status:      %s\n", c.Status)
	fmt.Fprintf(a.out, "Name:        %s\n", c.CharacterName)
	if c.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", c.Description)
	}
	if len(c.Keywords) > 0 {
		fmt.Fprintf(a.out, "Keywords:    %s\n", strings.Join(c.Keywords, ", "))
	}
	if c.AdapterID != nil {
		fmt.Fprintf(a.out, "Adapter:     %s\n", *c.AdapterID)
	}
}
