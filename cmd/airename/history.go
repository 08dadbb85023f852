package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v2"

	"github.com/ilkoid/airename/pkg/app"
	"github.com/ilkoid/airename/pkg/history"
)

const historyTimeLayout = "2006-01-02 15:04"

var (
	windowFlag = &cli.StringFlag{
		Name:  "window",
		Usage: `records newer than this duration, e.g. 24h, or "all" (default: history.window_hours)`,
	}
	allFlag = &cli.BoolFlag{
		Name:  "all",
		Usage: "ignore the window, same as --window all",
	}
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "inspect and manage rename history",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print history records",
				Flags:  []cli.Flag{windowFlag, allFlag},
				Action: historyList,
			},
			{
				Name:  "export",
				Usage: "write records to a text file (one record) or CSV",
				Flags: []cli.Flag{
					windowFlag,
					allFlag,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
				},
				Action: historyExport,
			},
			{
				Name:      "delete",
				Usage:     "delete records by id",
				ArgsUsage: "<ids...>",
				Action:    historyDelete,
			},
			{
				Name:   "clear",
				Usage:  "delete records inside the window",
				Flags:  []cli.Flag{windowFlag, allFlag},
				Action: historyClear,
			},
		},
	}
}

// windowFromFlag разбирает --window так же, как параметр window в API.
func windowFromFlag(c *cli.Context, comps *app.Components) (time.Duration, error) {
	if c.Bool("all") {
		return 0, nil
	}

	raw := c.String("window")
	switch raw {
	case "":
		return comps.Config.History.GetDefaults().Window(), nil
	case "all":
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid --window %q", raw)
	}
	return d, nil
}

// loadWindow открывает компоненты и читает записи внутри окна.
func loadWindow(c *cli.Context) (*app.Components, []history.Record, time.Duration, error) {
	comps, err := setup(c)
	if err != nil {
		return nil, nil, 0, err
	}

	window, err := windowFromFlag(c, comps)
	if err != nil {
		comps.Close()
		return nil, nil, 0, err
	}

	records, err := comps.History.Load(c.Context)
	if err != nil {
		comps.Close()
		return nil, nil, 0, err
	}
	return comps, history.FilterWindow(records, time.Now(), window), window, nil
}

func historyList(c *cli.Context) error {
	comps, records, _, err := loadWindow(c)
	if err != nil {
		return err
	}
	defer comps.Close()

	if len(records) == 0 {
		fmt.Println("No history records")
		return nil
	}

	loc, _ := comps.Config.Archive.LoadLocation()
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("ID", "PROCESSED", "ORIGINAL", "NEW NAME")

	for _, r := range records {
		t.Row(r.ID, r.Time().In(loc).Format(historyTimeLayout), r.OriginalName, r.NewName)
	}

	fmt.Println(t)
	return nil
}

func historyExport(c *cli.Context) error {
	comps, records, _, err := loadWindow(c)
	if err != nil {
		return err
	}
	defer comps.Close()

	loc, _ := comps.Config.Archive.LoadLocation()
	file, err := history.Export(records, comps.Config.History.ExportPrefix, time.Now(), loc)
	if err != nil {
		return err
	}

	dir := c.String("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Exported %d records to %s\n", len(records), path)
	return nil
}

func historyDelete(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("no record ids given", 2)
	}

	comps, err := setup(c)
	if err != nil {
		return err
	}
	defer comps.Close()

	n, err := comps.History.DeleteSelected(c.Context, c.Args().Slice())
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d records\n", n)
	return nil
}

func historyClear(c *cli.Context) error {
	comps, err := setup(c)
	if err != nil {
		return err
	}
	defer comps.Close()

	window, err := windowFromFlag(c, comps)
	if err != nil {
		return err
	}

	n, err := comps.History.ClearFiltered(c.Context, time.Now(), window)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d records\n", n)
	return nil
}
