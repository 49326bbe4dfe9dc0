package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/opsledger/internal/audit"
	"github.com/roach88/opsledger/internal/config"
	"github.com/roach88/opsledger/internal/engine"
	"github.com/roach88/opsledger/internal/ops"
	"github.com/roach88/opsledger/internal/pgstore"
	"github.com/roach88/opsledger/internal/store"
)

// recordStore is what the CLI needs from either store implementation.
type recordStore interface {
	ops.Store
	ops.MachineDirectory
	AddMachine(ctx context.Context, m ops.Machine) error
	Close() error
}

var (
	_ recordStore = (*store.Store)(nil)
	_ recordStore = (*pgstore.Store)(nil)
)

// session is the configured store, engine and output for one command.
type session struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger
	store  recordStore
	engine *engine.Engine
	out    *OutputFormatter
}

// openSession loads configuration, opens the store and builds the engine.
// The caller must call close.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, outputError(out, CodeConfig, err)
	}
	if opts.DB != "" {
		if cfg.Store.Driver == config.DriverPostgres {
			cfg.Store.DSN = opts.DB
		} else {
			cfg.Store.Path = opts.DB
		}
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)

	var st recordStore
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		logger.Debug("opening postgres store")
		st, err = pgstore.Open(cfg.Store.DSN)
	default:
		logger.Debug("opening sqlite store", "path", cfg.Store.Path)
		st, err = store.Open(cfg.Store.Path)
	}
	if err != nil {
		return nil, outputError(out, CodeStore, err)
	}

	engineOpts := []engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithAuditLog(audit.New(logger)),
		engine.WithSeededSourceQuantities(cfg.Import.SeedSourceQuantities),
		engine.WithCodePrefixLen(cfg.Import.WorkOrderPrefixLen),
	}
	engineOpts = append(engineOpts, opts.EngineOptions...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return &session{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		store:  st,
		engine: engine.New(st, engineOpts...),
		out:    out,
	}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// withSession runs fn against a freshly opened session.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(s *session) error) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CLI error codes. Engine error codes are passed through unchanged.
const (
	CodeUsage           = "USAGE"
	CodeConfig          = "CONFIG"
	CodeStore           = "STORE"
	CodePlanFile        = "PLAN_FILE"
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeImportFailed    = "IMPORT_FAILED"
	CodeGeneric         = "ERROR"
)

// outputError reports err through the formatter and converts it into an
// ExitError. Errors that are already ExitErrors pass through.
func outputError(out *OutputFormatter, code string, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	_ = out.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// engineError reports a failed engine call using the engine's error code.
func engineError(out *OutputFormatter, err error) error {
	code := string(engine.CodeOf(err))
	if code == "" {
		code = CodeGeneric
	}
	return outputError(out, code, err)
}

// rejected reports a quantity edit the validator refused. Exit code 1.
func rejected(out *OutputFormatter, v ops.Validation) error {
	_ = out.Error(CodeInvalidQuantity, v.Error, v)
	return NewExitError(ExitFailure, v.Error)
}
