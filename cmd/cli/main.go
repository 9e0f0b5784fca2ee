package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/favicon"
	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/ctrltab/pkg/config"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/services"
)

const usage = `usage:
  ctrltab-cli export --user <name> [--format json|yaml] [--output file]
  ctrltab-cli import --user <name> --file <path> [--format json|yaml]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	t := &transfer{
		repo:        repo,
		collections: services.NewCollectionService(repo, logger),
		sections:    services.NewSectionService(repo),
		links: services.NewLinkService(repo, favicon.NewResolver(
			favicon.WithServiceURL(cfg.FaviconServiceURL),
			favicon.WithTimeout(cfg.FaviconTimeout),
			favicon.WithLogger(logger),
		)),
	}

	if err := run(context.Background(), t, os.Args[1], os.Args[2:], os.Stdout, logger); err != nil {
		logger.Error(os.Args[1]+" failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, t *transfer, command string, args []string, stdout io.Writer, logger *slog.Logger) error {
	switch command {
	case "export":
		fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
		user := fs.StringP("user", "u", "", "username whose collections are exported")
		format := fs.StringP("format", "f", "json", "output format: json or yaml")
		output := fs.StringP("output", "o", "", "write to this file instead of stdout")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *user == "" {
			return fmt.Errorf("--user is required")
		}

		doc, err := t.export(ctx, *user)
		if err != nil {
			return err
		}
		w := stdout
		if *output != "" {
			f, err := os.Create(*output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return encode(w, *format, doc)

	case "import":
		fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
		user := fs.StringP("user", "u", "", "username that will own the imported collections")
		file := fs.String("file", "", "export file to import")
		format := fs.StringP("format", "f", "", "input format: json or yaml (default: from file extension)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *user == "" || *file == "" {
			return fmt.Errorf("--user and --file are required")
		}
		if *format == "" {
			*format = formatFromPath(*file)
		}

		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := decode(f, *format)
		if err != nil {
			return err
		}
		counts, err := t.importTree(ctx, *user, doc)
		if err != nil {
			return err
		}
		logger.Info("import finished", "user", *user,
			"collections", counts.collections, "sections", counts.sections, "links", counts.links)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
