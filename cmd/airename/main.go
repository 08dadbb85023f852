// airename — AI ассистент переименования файлов.
//
// Команды:
//
//	airename rename <files...>   интерактивный экран просмотра имён
//	airename rename --yes ...    обработать, выгрузить архив и выйти
//	airename serve               HTTP API
//	airename history list        история переименований
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ilkoid/airename/internal/server"
	"github.com/ilkoid/airename/pkg/app"
	"github.com/ilkoid/airename/pkg/utils"
)

const version = "1.0"

func main() {
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	cliApp := &cli.App{
		Name:    "airename",
		Usage:   "rename files with names suggested by an AI model",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.yaml",
				EnvVars: []string{"AIRENAME_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			renameCommand(),
			serveCommand(),
			historyCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		shutdown()
		os.Exit(1)
	}
}

// setup загружает конфиг, открывает лог и собирает компоненты.
func setup(c *cli.Context) (*app.Components, error) {
	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: c.String("config")})
	if err != nil {
		return nil, err
	}

	if err := utils.InitLogger(utils.LoggerOptions{Dir: cfg.App.LogDir, Mirror: cfg.App.Debug}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}

	if cfgPath == "" {
		utils.Info("Config file not found, using defaults", "version", version)
	} else {
		utils.Info("Config loaded", "path", cfgPath, "version", version)
	}

	comps, err := app.Initialize(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return comps, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "override server.addr, e.g. :8080"},
		},
		Action: func(c *cli.Context) error {
			comps, err := setup(c)
			if err != nil {
				return err
			}
			defer comps.Close()

			if c.IsSet("addr") {
				comps.Config.Server.Addr = c.String("addr")
			}

			return server.NewAPI(c.Context, comps).Run(c.Context)
		},
	}
}
