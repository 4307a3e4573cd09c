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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"event-banner/internal/banner"
	"event-banner/internal/config"
	"event-banner/internal/console"
	"event-banner/internal/countdown"
	"event-banner/internal/handler"
	"event-banner/internal/qr"
	"event-banner/internal/roster"
	"event-banner/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "event-banner",
		Usage: "Event page with RSVP form, guest list and countdown.",
		Commands: []*cli.Command{
			serveCommand(),
			guestsCommand(),
			clearCommand(),
			countdownCommand(),
			qrCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

func logConfigWarnings(log zerolog.Logger, cfg *config.Config) {
	for _, w := range cfg.Warnings {
		log.Warn().Str("component", "config").Msg(w)
	}
}

// app is everything a command needs, built from the environment
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	backend storage.Backend
	banner  *banner.Banner
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.LoadConfig()
	log := setupLogger(cfg.LogLevel)
	logConfigWarnings(log, cfg)

	backend, err := storage.Open(ctx, storage.Config{
		Driver:   cfg.StorageDriver,
		DataDir:  cfg.DataDir,
		RedisURL: cfg.RedisURL,
		Log:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	log.Debug().Str("driver", cfg.StorageDriver).Msg("Storage opened")

	store := roster.NewStore(backend, cfg.StorageKey, log)
	engine := countdown.NewEngine(cfg.EventDate, countdown.WithInterval(cfg.CountdownInterval))
	b := banner.New(banner.Config{
		Title:          cfg.EventTitle,
		Tagline:        cfg.EventTagline,
		HeroVideo:      cfg.HeroVideo,
		CountdownImage: cfg.CountdownImage,
		ContactFields:  cfg.ContactFields,
	}, store, engine, log)

	return &app{cfg: cfg, log: log, backend: backend, banner: b}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.Error().Err(err).Msg("Failed to close storage")
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the event page.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "console", Usage: "Also run the interactive console on stdin."},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			hub := handler.NewHub(a.log)
			defer hub.Close()
			a.banner.OnCountdown(hub.Publish)

			h, err := handler.New(a.banner, hub, &handler.Config{
				PublicURL:      a.cfg.PublicURL,
				MediaDir:       a.cfg.MediaDir,
				AllowedOrigins: a.cfg.AllowedOrigins,
			}, a.log)
			if err != nil {
				return fmt.Errorf("failed to load templates: %w", err)
			}

			if err := a.banner.Mount(ctx); err != nil {
				return err
			}
			defer a.banner.Unmount()

			srv := &http.Server{
				Addr:         a.cfg.HTTPAddr,
				Handler:      h.Routes(),
				ReadTimeout:  a.cfg.ReadTimeout,
				WriteTimeout: a.cfg.WriteTimeout,
				IdleTimeout:  a.cfg.IdleTimeout,
			}

			fmt.Println("🎉 " + a.cfg.EventTitle)
			fmt.Println("============================")
			if code, err := qr.Terminal(a.cfg.PublicURL); err == nil {
				fmt.Println("\n" + code)
				fmt.Printf("📱 Scan to RSVP: %s\n\n", a.cfg.PublicURL)
			}

			if c.Bool("console") {
				go console.New(a.banner, os.Stdin, os.Stdout).Run(ctx)
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", srv.Addr).Msg("Server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info().Msg("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			fmt.Println("Goodbye! 👋")
			return nil
		},
	}
}

func guestsCommand() *cli.Command {
	return &cli.Command{
		Name:  "guests",
		Usage: "Print the guest list.",
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.banner.Mount(c.Context); err != nil {
				return err
			}
			defer a.banner.Unmount()

			console.PrintGuests(os.Stdout, a.banner.Guests(), a.banner.TotalGuests())
			return nil
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every guest from the list.",
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.banner.Mount(c.Context); err != nil {
				return err
			}
			defer a.banner.Unmount()

			if err := a.banner.ClearAll(c.Context); err != nil {
				return err
			}
			fmt.Println("🗑️  Guest list cleared.")
			return nil
		},
	}
}

func countdownCommand() *cli.Command {
	return &cli.Command{
		Name:  "countdown",
		Usage: "Print the time left until the event.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Usage: "Keep printing every tick until interrupted."},
		},
		Action: func(c *cli.Context) error {
			cfg := config.LoadConfig()
			logConfigWarnings(setupLogger(cfg.LogLevel), cfg)
			engine := countdown.NewEngine(cfg.EventDate, countdown.WithInterval(cfg.CountdownInterval))

			if !c.Bool("watch") {
				fmt.Printf("⏳ %s\n", engine.Current())
				return nil
			}

			ticker := engine.Start(c.Context, func(s countdown.State) {
				fmt.Printf("\r⏳ %s ", s)
			})
			<-ticker.Done()
			fmt.Println()
			return nil
		},
	}
}

func qrCommand() *cli.Command {
	return &cli.Command{
		Name:  "qr",
		Usage: "Print a QR code linking to the event page.",
		Action: func(c *cli.Context) error {
			cfg := config.LoadConfig()
			code, err := qr.Terminal(cfg.PublicURL)
			if err != nil {
				return err
			}
			fmt.Println(code)
			fmt.Println(cfg.PublicURL)
			return nil
		},
	}
}
