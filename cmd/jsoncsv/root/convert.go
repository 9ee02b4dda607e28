package root

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flarebyte/jsoncsv/internal/config"
	"github.com/flarebyte/jsoncsv/internal/logging"
	"github.com/flarebyte/jsoncsv/internal/project"
	"github.com/flarebyte/jsoncsv/internal/rename"
	"github.com/flarebyte/jsoncsv/internal/scan"
	"github.com/flarebyte/jsoncsv/internal/term"
)

type convertOptions struct {
	Debug       bool
	ConfigPath  string
	CRLF        bool
	CRLFSet     bool
	Boundary    string
	BoundarySet bool
	Renames     []string
}

// settings are the effective values after merging config and flags.
type settings struct {
	renames    rename.Map
	lineEnding string
	mode       scan.Mode
}

func runConvert(ctx context.Context, opts convertOptions, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var hl *term.Highlighter
	if errOut == io.Writer(os.Stderr) {
		errOut, hl = term.Stderr()
	}
	logger := logging.New(errOut, logging.LevelFromDebug(opts.Debug))

	s, err := resolveSettings(opts, logger)
	if err != nil {
		return err
	}

	scanner := scan.New(in, s.mode, logger)
	defer scanner.Close()
	p := &project.Projector{
		Renames:    s.renames,
		Out:        out,
		Err:        errOut,
		LineEnding: s.lineEnding,
		Highlight:  hl,
		Logger:     logger,
	}
	return p.Run(ctx, scanner.All())
}

func resolveSettings(opts convertOptions, logger *slog.Logger) (settings, error) {
	s := settings{lineEnding: "\n", mode: scan.ColumnBrace}
	cliRenames, err := rename.Parse(opts.Renames)
	if err != nil {
		return settings{}, err
	}
	s.renames = cliRenames

	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return settings{}, fmt.Errorf("config %s: %w", opts.ConfigPath, err)
		}
		logger.Debug("config loaded", "path", opts.ConfigPath, "renames", len(cfg.Renames))
		s.renames = rename.FromPairs(cfg.Renames).Merge(cliRenames)
		if cfg.HasLineEnding {
			if s.lineEnding, err = config.ParseLineEnding(cfg.LineEnding); err != nil {
				return settings{}, err
			}
		}
		if cfg.HasBoundary {
			if s.mode, err = scan.ParseMode(cfg.Boundary); err != nil {
				return settings{}, err
			}
		}
	}

	if opts.CRLFSet {
		s.lineEnding = "\n"
		if opts.CRLF {
			s.lineEnding = "\r\n"
		}
	}
	if opts.BoundarySet {
		if s.mode, err = scan.ParseMode(opts.Boundary); err != nil {
			return settings{}, err
		}
	}
	logger.Debug("settings", "renames", s.renames.Len(), "boundary", s.mode.String(), "crlf", s.lineEnding == "\r\n")
	return s, nil
}
