// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/liqingnz/goat-locking-wrapper/api"
	"github.com/liqingnz/goat-locking-wrapper/genesis"
	"github.com/liqingnz/goat-locking-wrapper/kv"
	"github.com/liqingnz/goat-locking-wrapper/log"
	"github.com/liqingnz/goat-locking-wrapper/metrics"
	"github.com/liqingnz/goat-locking-wrapper/state"
	"github.com/liqingnz/goat-locking-wrapper/wrapper"
	"github.com/liqingnz/goat-locking-wrapper/wrapper/event"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "goat-locking-wrapper",
		Usage:   "staking middleware node between validator owners and the locking system",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			apiAddrFlag,
			metricsAddrFlag,
			verbosityFlag,
			logRequestsFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name))

	store, err := openStore(ctx.String(dataDirFlag.Name))
	if err != nil {
		return err
	}
	defer store.Close()

	st := state.NewStater(store).NewState()
	w := wrapper.New(st, event.NewRecorder())

	if err := buildGenesisIfNeeded(w, ctx.String(genesisFlag.Name)); err != nil {
		return err
	}

	if addr := ctx.String(metricsAddrFlag.Name); addr != "" {
		metrics.InitializePrometheusMetrics()
		return serveAll(ctx, w, addr)
	}
	return serveAll(ctx, w, "")
}

func initLogger(verbosity int) {
	var level slog.LevelVar
	level.Set(log.FromVerbosity(verbosity))
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetDefault(log.NewTerminalHandlerWithLevel(os.Stderr, &level, true))
	} else {
		log.SetDefault(log.JSONHandlerWithLevel(os.Stderr, &level))
	}
}

func openStore(dataDir string) (kv.Store, error) {
	if dataDir == "" {
		logger.Warn("no data directory, state will not be persisted")
		return kv.NewMem()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return kv.New(filepath.Join(dataDir, "state.db"), kv.Options{})
}

// buildGenesisIfNeeded seeds the state on first run, detected by the
// absence of a configured owner.
func buildGenesisIfNeeded(w *wrapper.Wrapper, genesisPath string) error {
	owner, err := w.Params.Owner()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return nil
	}
	if genesisPath == "" {
		return errors.New("state is empty and no genesis file given")
	}
	cfg, err := genesis.LoadConfig(genesisPath)
	if err != nil {
		return err
	}
	if err := cfg.Build(w); err != nil {
		return err
	}
	stage, err := w.State.Stage()
	if err != nil {
		return err
	}
	if err := stage.Commit(); err != nil {
		return err
	}
	logger.Info("genesis built", "owner", cfg.Owner, "foundation", cfg.Foundation)
	return nil
}

func serveAll(ctx *cli.Context, w *wrapper.Wrapper, metricsAddr string) error {
	now := func() uint64 { return uint64(time.Now().Unix()) }
	handler := api.New(w, now, api.Config{
		LogRequests: ctx.Bool(logRequestsFlag.Name),
	})

	runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return serve(groupCtx, "api", ctx.String(apiAddrFlag.Name), handler)
	})
	if metricsAddr != "" {
		group.Go(func() error {
			return serve(groupCtx, "metrics", metricsAddr, metrics.HTTPHandler())
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("shut down cleanly")
	return nil
}

func serve(ctx context.Context, name, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("service started", "name", name, "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return errors.Wrap(err, name)
	}
}
