package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"taskify/internal/client"
	"taskify/internal/config"
	"taskify/internal/result"
	"taskify/internal/server"
	"taskify/internal/store"
	"taskify/internal/task"
	"taskify/internal/tasklist"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskify",
		Usage: "To-do list API server and command-line client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (.jsonc or .yaml)",
				Value:   config.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to .env file",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Work against the local mirror instead of the API",
			},
			&cli.StringFlag{
				Name:  "api",
				Usage: "Taskify API base URL",
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			{
				Name:   "list",
				Usage:  "Show all tasks",
				Action: runList,
			},
			{
				Name:      "add",
				Usage:     "Create a task",
				ArgsUsage: "<text...>",
				Action:    runAdd,
			},
			{
				Name:      "edit",
				Usage:     "Replace the text of a task",
				ArgsUsage: "<id> <text...>",
				Action:    runEdit,
			},
			{
				Name:      "toggle",
				Aliases:   []string{"done"},
				Usage:     "Flip the completed flag of a task",
				ArgsUsage: "<id>",
				Action:    runToggle,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<id>",
				Action:    runRemove,
			},
			newExportCommand(),
		},
		DefaultCommand: "list",
	}
}

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
			},
		},
		Action: runServe,
	}
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the task list as json, csv or pdf",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "json|csv|pdf",
				Value: "json",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output path (stdout when empty)",
			},
		},
		Action: runExport,
	}
}

// loadConfig resolves .env, the config file and root flags, in that order,
// and installs the logger.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.LoadDotenv(cmd.String("env-file")); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("offline") {
		cfg.Client.Offline = cmd.Bool("offline")
	}
	if cmd.IsSet("api") {
		cfg.Client.BaseURL = cmd.String("api")
	}
	if cmd.Bool("debug") {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(errWriter(cmd), cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

// openRepo returns the API client, or the local mirror when offline.
func openRepo(ctx context.Context, cfg *config.Config) (task.Repository, func() error, error) {
	if cfg.Client.Offline {
		db, err := store.OpenSQLite(ctx, cfg.Client.MirrorPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open local mirror: %w", err)
		}
		slog.Debug("using local mirror", "path", cfg.Client.MirrorPath)
		return task.NewManager(db), db.Close, nil
	}
	c, err := client.New(cfg.Client.BaseURL, cfg.Client.Timeout.Duration)
	if err != nil {
		return nil, nil, err
	}
	return c, func() error { return nil }, nil
}

// withState loads the mirror, runs fn and renders after each change.
// A nil fn just renders the loaded list.
func withState(ctx context.Context, cmd *cli.Command, fn func(*tasklist.State) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	st := tasklist.New(repo)
	if err := st.Load(ctx); err != nil {
		return err
	}
	out := outWriter(cmd)
	if fn == nil {
		return result.WriteTable(out, st.Tasks())
	}
	st.OnChange(func(all []task.Task) {
		if err := result.WriteTable(out, all); err != nil {
			slog.Warn("render failed", "error", err)
		}
	})
	return fn(st)
}

func runList(ctx context.Context, cmd *cli.Command) error {
	return withState(ctx, cmd, nil)
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	text := strings.Join(cmd.Args().Slice(), " ")
	return withState(ctx, cmd, func(st *tasklist.State) error {
		_, err := st.Add(ctx, text)
		return err
	})
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First())
	if err != nil {
		return err
	}
	text := strings.Join(cmd.Args().Tail(), " ")
	return withState(ctx, cmd, func(st *tasklist.State) error {
		return st.Edit(ctx, id, text)
	})
}

func runToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First())
	if err != nil {
		return err
	}
	return withState(ctx, cmd, func(st *tasklist.State) error {
		return st.Toggle(ctx, id)
	})
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.Args().First())
	if err != nil {
		return err
	}
	return withState(ctx, cmd, func(st *tasklist.State) error {
		return st.Remove(ctx, id)
	})
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close()
	slog.Info("store ready", "driver", cfg.Store.Driver)

	addr := cfg.HTTP.Addr
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}
	return server.New(st, cfg.HTTP.CORSOrigins).ListenAndServe(ctx, addr)
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	b, err := result.NewExporter(repo).Export(ctx, cmd.String("format"))
	if err != nil {
		return err
	}
	if path := cmd.String("out"); path != "" {
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(outWriter(cmd), "Exported -> %s\n", path)
		return nil
	}
	_, err = outWriter(cmd).Write(b)
	return err
}

func parseID(arg string) (int64, error) {
	if arg == "" {
		return 0, &task.ValidationError{Field: "id", Reason: "is required"}
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, &task.ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not a number", arg)}
	}
	return id, nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
