// Package cli implements the fileledger command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/bitfsorg/fileledger-go/config"
	"github.com/bitfsorg/fileledger-go/metrics"
	"github.com/bitfsorg/fileledger-go/vault"
)

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(slices.Sorted(maps.Keys(validLogLevels)), "|")
)

// app is the state shared by the commands of one invocation.
type app struct {
	v   *viper.Viper
	cfg config.Config

	// cfgFound reports whether cfg was read from the data directory.
	cfgFound bool

	reg      *prometheus.Registry
	recorder *metrics.Recorder
}

// NewRootCmd builds the fileledger command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "fileledger",
		Short: "Record encrypted files in a local hash chain",
		Long: `fileledger encrypts files, stores them by content digest and records
each upload in a proof-of-work hash chain kept in a local data directory.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := root.PersistentFlags()
	pf.String("datadir", "", "data directory (default ~/.fileledger)")
	pf.StringP("logLevel", "l", "", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	pf.String("prometheus-addr", "", "serve Prometheus metrics on this address while a command runs")
	if err := a.v.BindPFlags(pf); err != nil {
		slog.Error("Failed to bind root flags", "error", err)
	}

	a.v.SetEnvPrefix("fileledger")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newInitCmd(a),
		newUploadCmd(a),
		newDownloadCmd(a),
		newEncryptCmd(a),
		newDecryptCmd(),
		newDigestCmd(),
		newVerifyCmd(a),
		newShowCmd(a),
		newLsCmd(a),
		newBlockCmd(a),
		newRestoreCmd(a),
		newIdentityCmd(),
		newVersionCmd(),
	)
	return root
}

// setup resolves the configuration: built-in defaults, then the config
// file in the data directory, then flags and FILELEDGER_* environment.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	dataDir := a.v.GetString("datadir")
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	switch {
	case err == nil:
		a.cfgFound = true
	case errors.Is(err, config.ErrConfigNotFound):
		cfg = config.DefaultConfig()
	default:
		return err
	}
	cfg.DataDir = dataDir

	if level := a.v.GetString("logLevel"); level != "" {
		cfg.LogLevel = level
	}
	if addr := a.v.GetString("prometheus-addr"); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := setLogLevel(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.reg = prometheus.NewRegistry()
	a.recorder, err = metrics.NewRecorder(a.reg)
	if err != nil {
		return err
	}

	slog.Debug("Application started", "version", Version, "datadir", cfg.DataDir)
	return nil
}

// setLogLevel installs a JSON logger on w at the given level.
func setLogLevel(logLevel string, w io.Writer) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openVault opens the data directory's chain with metrics attached.
func (a *app) openVault() (*vault.Vault, error) {
	v, err := vault.Open(a.cfg.DataDir, a.cfg)
	if err != nil {
		if errors.Is(err, vault.ErrNoChain) {
			return nil, fmt.Errorf("%w; run 'fileledger init' first", err)
		}
		return nil, err
	}
	v.Metrics = a.recorder
	return v, nil
}

// run executes fn, serving metrics alongside it when an address is configured.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.cfg.MetricsAddr == "" {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Listen(gctx, a.cfg.MetricsAddr, a.reg)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("An error occurred", "error", err)
		stop()
		os.Exit(1)
	}
}
