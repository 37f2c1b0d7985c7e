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

	"github.com/ARQAP/archive-backend/src/config"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/middleware"
	"github.com/ARQAP/archive-backend/src/routes"
	"github.com/ARQAP/archive-backend/src/seed"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/ARQAP/archive-backend/src/storage"
	"github.com/ARQAP/archive-backend/src/svg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// app holds what every command needs once configuration and the store are up.
type app struct {
	cfg   *config.Config
	gw    *db.GormGateway
	store storage.Store
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	middleware.SetSecretKey(cfg.Auth.JWTSecret)

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("error opening storage: %w", err)
	}

	return &app{cfg: cfg, gw: db.NewGateway(conn), store: store}, nil
}

func (a *app) wire() routes.Services {
	images := services.NewImageService(a.store, svg.NewOptimizer())
	aggregates := services.NewAggregateService(a.gw)
	buildings := services.NewBuildingService(a.gw, images, aggregates)

	return routes.Services{
		Years:      services.NewYearService(a.gw, images),
		Buildings:  buildings,
		Features:   services.NewFeatureService(a.gw, buildings),
		Finds:      services.NewFindService(a.gw, buildings),
		Files:      services.NewFileService(a.gw, a.store),
		References: services.NewReferenceService(a.gw),
		Users:      services.NewUserService(a.gw, a.cfg.Auth),
	}
}

func serve(ctx context.Context) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := routes.NewRouter(routes.RouterConfig{
		TempDir:     a.cfg.Server.TempDir,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, a.gw, a.wire())

	server := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	go db.Watch(ctx, a.gw, a.cfg.Database.WatchInterval, a.cfg.Database.MaxFailures, func(err error) {
		logging.Fatal().Err(err).Msg("database connection lost")
	})

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("server is running")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error starting server on %s: %w", server.Addr, err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "archive",
		Short:         "Excavation archive backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the archive API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	var workbook, filesDir string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a workbook and a directory of shared files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			seeder := seed.NewSeeder(a.gw, a.wire().Files)

			if workbook != "" {
				f, err := os.Open(workbook)
				if err != nil {
					return err
				}
				defer f.Close()
				result, err := seeder.ImportWorkbook(ctx, f)
				if err != nil {
					return err
				}
				report(result)
			}
			if filesDir != "" {
				result, err := seeder.ImportFiles(ctx, filesDir)
				if err != nil {
					return err
				}
				report(result)
			}
			return nil
		},
	}
	seedCmd.Flags().StringVar(&workbook, "workbook", "", "path to the .xlsx workbook")
	seedCmd.Flags().StringVar(&filesDir, "files", "", "directory holding csv/, pdf/ and images/")
	root.AddCommand(seedCmd)

	var username, email string
	initUserCmd := &cobra.Command{
		Use:   "init-user",
		Short: "Create the bootstrap admin if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			password := os.Getenv("ADMIN_PASSWORD")
			if len(password) < 10 {
				return errors.New("ADMIN_PASSWORD must be set to at least 10 characters")
			}
			user, created, err := a.wire().Users.EnsureAdmin(ctx, dtos.RegisterCommand{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			if created {
				logging.Info().Str("username", user.Username).Msg("admin user created")
			} else {
				logging.Info().Str("username", user.Username).Msg("user already exists")
			}
			return nil
		},
	}
	initUserCmd.Flags().StringVar(&username, "username", "admin", "admin username")
	initUserCmd.Flags().StringVar(&email, "email", "admin@localhost", "admin email")
	root.AddCommand(initUserCmd)

	return root
}

func report(result *seed.Result) {
	for sheet, n := range result.Imported {
		logging.Info().Str("source", sheet).Int("imported", n).Msg("import finished")
	}
	for _, e := range result.Errors {
		logging.Warn().Msg(e)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
