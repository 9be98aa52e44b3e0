package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	adapthttp "spillthepill/internal/adapter/http"
	"spillthepill/internal/adapter/openrouter"
	"spillthepill/internal/adapter/upstream"
	"spillthepill/internal/app"
	"spillthepill/internal/config"
	"spillthepill/internal/logging"
	"spillthepill/internal/migrations"
)

func main() {
	root := &cobra.Command{
		Use:           "spillthepill",
		Short:         "SpillThePill API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.JWTSecret == config.DevJWTSecret {
		log.Warn("JWT_SECRET is not set, using the development secret")
	}

	store, err := openStore(ctx, cfg.Store, logging.Component(log, "store"))
	if err != nil {
		return err
	}

	hc := upstream.NewClient(cfg.HTTP.UpstreamTimeout)
	llm := openrouter.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, hc, logging.Component(log, "openrouter"))
	if cfg.LLM.APIKey == "" {
		log.Warn("OPENROUTER_API_KEY is not set, simplify and chat will fail")
	}

	tokens := app.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := app.NewAuthService(store, tokens, app.NewPasswordHasher(bcrypt.DefaultCost), logging.Component(log, "auth"))
	drugSvc := app.NewDrugService(
		drugDeps(cfg.Drugs, hc),
		app.NewSimplifier(llm, cfg.LLM.MaxTokens, logging.Component(log, "simplifier")),
		logging.Component(log, "drugs"),
	)
	chatSvc := app.NewChatService(llm, cfg.LLM.MaxTokens, logging.Component(log, "chat"))

	opts := adapthttp.Options{RequestTimeout: cfg.HTTP.RequestTimeout, CORSOrigins: cfg.HTTP.CORSOrigins}
	if cfg.OIDC.Enabled() {
		opts.SSO, err = adapthttp.NewSSOConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			_ = store.Close()
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(authSvc, drugSvc, chatSvc, opts, logging.Component(log, "http")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.HTTP.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.Addr, "store", cfg.Store.Driver, "drug_source", cfg.Drugs.Source, "sso", opts.SSO != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			_ = store.Close()
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.HTTP.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Info("shutting down")
			shutdownErr := srv.Shutdown(ctx)
			return errors.Join(shutdownErr, store.Close())
		},
	})
	code := <-wait
	log.Info("exited", "code", code)
	os.Exit(code)
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the postgres or sqlite store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrations(cmd.Context(), migrations.Up)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrations(cmd.Context(), migrations.Status)
			},
		},
	)
	return cmd
}
