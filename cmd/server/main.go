package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antigravity/minigolfscore/internal/bootstrap"
	"github.com/antigravity/minigolfscore/internal/db"
	"github.com/antigravity/minigolfscore/internal/handlers"
	"github.com/antigravity/minigolfscore/internal/scorecard"
	"github.com/antigravity/minigolfscore/internal/session"
	"github.com/antigravity/minigolfscore/internal/storage"
)

var (
	cfgPath  string
	cardKey  string
	relative bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "minigolfscore",
		Short:        "Mini-golf scorecard server",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", ".env", "config file")
	root.PersistentFlags().StringVar(&cardKey, "card", "", "card key (defaults to DEFAULT_CARD)")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a card as text",
		RunE:  runSummary,
	}
	summaryCmd.Flags().BoolVar(&relative, "relative", false, "show strokes relative to par")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every score on a card",
		RunE:  runReset,
	}

	root.AddCommand(summaryCmd, resetCmd)
	return root
}

type app struct {
	cfg   *bootstrap.Config
	log   *zap.SugaredLogger
	store storage.Store
	close func() error
}

func setup() (*app, error) {
	cfg, err := bootstrap.Setup(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: logger, close: func() error { return nil }}
	switch cfg.StorageDriver {
	case bootstrap.DriverSQLite:
		s, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		a.store, a.close = s, s.Close
	default:
		s, err := storage.NewFileStore(afero.NewOsFs(), cfg.DataDir)
		if err != nil {
			return nil, err
		}
		a.store = s
	}
	logger.Infow("Storage ready", zap.String("driver", cfg.StorageDriver))
	return a, nil
}

func (a *app) card() string {
	if cardKey != "" {
		return cardKey
	}
	return a.cfg.DefaultCard
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	defer a.log.Sync()

	cards := session.NewManager(a.store, a.log)
	if _, err := cards.Open(cmd.Context(), a.card()); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	handlers.NewHandler(cards, a.log).Router(r)

	srv := &http.Server{Addr: ":" + a.cfg.ServerPort, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Server started on :%s", a.cfg.ServerPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		a.log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warnw("Server shutdown", zap.Error(err))
	}
	// Every open card is saved on the way out; there is no autosave.
	return cards.SuspendAll(shutdownCtx)
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	rec := scorecard.New()
	if err := rec.Load(cmd.Context(), a.store, a.card()); err != nil {
		a.log.Warnw("Printing a fresh card", zap.String("card", a.card()), zap.Error(err))
	}
	fmt.Fprint(cmd.OutOrStdout(), rec.Summary(relative || rec.ScoreRelative()))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := session.Open(cmd.Context(), a.store, a.card(), a.log)
	if err != nil {
		return err
	}
	s.Update(func(rec *scorecard.Record) error {
		rec.ResetScores()
		return nil
	})
	if err := s.Suspend(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scores cleared on %s\n", s.Key())
	return nil
}
