package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/engine"
	"github.com/starford/ansuz/internal/mcpserver"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if notes := cmd.String("notes"); notes != "" {
		cfg.Notes.Path = notes
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return fmt.Errorf("create notes dir: %w", err)
	}

	eng, err := engine.Open(cfg.Notes.Path,
		engine.WithLogger(logger),
		engine.WithMaxNoteSize(cfg.Notes.MaxNoteBytes()))
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer eng.Close()

	eng.StartIndexing()

	return mcpserver.New(eng).ServeStdio()
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "notes",
			Aliases: []string{"n"},
			Usage:   "Path to the notes directory (overrides config)",
			Sources: cli.EnvVars("ANSUZ_NOTES_DIR"),
		},
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Markdown note index with full-text search, tag queries, and MCP integration",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with live index updates",
				Flags:  flags,
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Flags:  flags,
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
