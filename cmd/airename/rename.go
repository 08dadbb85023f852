package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/ilkoid/airename/internal/ui"
	"github.com/ilkoid/airename/pkg/app"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/session"
	"github.com/ilkoid/airename/pkg/utils"
)

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "suggest names for files and export them as a zip archive",
		ArgsUsage: "<files...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "accept all suggestions and export without the review screen",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "directory for the archive (default: archive.output_dir)",
			},
			&cli.StringFlag{
				Name:  "theme",
				Value: "default",
				Usage: "color scheme: default or light",
			},
		},
		Action: renameAction,
	}
}

func renameAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("no files given", 2)
	}

	comps, err := setup(c)
	if err != nil {
		return err
	}
	defer comps.Close()

	sources, skipped, err := readSources(c.Args().Slice(), comps.Config.Limits.MaxFileSize())
	if err != nil {
		return err
	}

	sess := comps.NewSession()
	var rejected []session.Rejection
	if len(sources) > 0 {
		_, rejected, err = sess.Add(sources...)
	} else {
		err = session.ErrNoValidFiles
	}
	for _, r := range append(skipped, rejected...) {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", r.Name, r.Reason)
	}
	if err != nil {
		return err
	}

	outDir := c.String("out")
	if outDir == "" {
		outDir = comps.Config.Archive.OutputDir
	}

	if c.Bool("yes") {
		return renameUnattended(c, comps, sess, outDir)
	}

	model := ui.InitialModel(c.Context, ui.Deps{
		Session: sess,
		Process: comps.Process,
		Export: func(ctx context.Context, entries []session.FileEntry) (string, error) {
			res, err := comps.Export(ctx, entries, app.ExportOptions{SaveDir: outDir})
			if err != nil {
				return "", err
			}
			return exportLocation(res), nil
		},
		Model:  comps.Config.Models.DefaultNaming,
		Colors: c.String("theme"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(c.Context))
	if _, err := p.Run(); err != nil {
		utils.Error("TUI program failed", "error", err)
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// renameUnattended принимает все предложенные имена и сразу выгружает архив.
func renameUnattended(c *cli.Context, comps *app.Components, sess *session.Session, outDir string) error {
	res, err := comps.Process(c.Context, sess, session.NewPauseToken(), nil)
	if err != nil {
		return err
	}

	for _, e := range sess.Entries() {
		mark := "✓"
		if e.State == session.StateFailed {
			mark = "✗"
		}
		fmt.Printf("%s %s → %s\n", mark, e.OriginalName, e.EditedName)
	}

	sess.SelectAll()
	out, err := comps.Export(c.Context, sess.Selected(), app.ExportOptions{SaveDir: outDir})
	if err != nil {
		return err
	}

	fmt.Printf("%d named, %d kept original name\n", res.Ready, res.Failed)
	fmt.Println("Archive:", exportLocation(out))
	return nil
}

// readSources читает файлы с диска.
// Файлы больше maxSize не читаются и возвращаются как отказы.
func readSources(paths []string, maxSize int64) ([]extract.Source, []session.Rejection, error) {
	sources := make([]extract.Source, 0, len(paths))
	var skipped []session.Rejection
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, err
		}
		if info.IsDir() {
			return nil, nil, fmt.Errorf("%s is a directory", p)
		}
		if maxSize > 0 && info.Size() > maxSize {
			skipped = append(skipped, session.Rejection{Name: filepath.Base(p), Reason: session.ReasonTooLarge})
			continue
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", p, err)
		}
		sources = append(sources, extract.Source{
			Name:    filepath.Base(p),
			ModTime: info.ModTime(),
			Data:    data,
		})
	}
	return sources, skipped, nil
}

func exportLocation(res *app.ExportResult) string {
	loc := res.Path
	if loc == "" {
		loc = res.Archive.Name
	}
	if res.DownloadURL != "" {
		loc += " (" + res.DownloadURL + ")"
	}
	return loc
}
