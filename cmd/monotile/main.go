package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"

	"github.com/lx7/monotile/internal/app"
	"github.com/lx7/monotile/internal/backend"
	"github.com/lx7/monotile/internal/build"
	"github.com/lx7/monotile/internal/bus"
	"github.com/lx7/monotile/internal/config"
	"github.com/lx7/monotile/internal/core"
	"github.com/lx7/monotile/internal/server"
	"github.com/lx7/monotile/internal/wm"
	"github.com/lx7/monotile/pkg/sutureext"
)

type Options struct {
	Debug   bool   `doc:"enable debug logging"`
	Host    string `doc:"host the control api listens on" default:"127.0.0.1"`
	Port    int    `doc:"port the control api listens on" default:"8080"`
	Config  string `doc:"config file, empty means the xdg default"`
	Display string `doc:"x display, empty means $DISPLAY"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			bus.SetContext(ctx)
			return serve(ctx, options)
		})
	})

	cli.Root().Version = build.Current.Version

	cli.Run()
}

func serve(ctx context.Context, options *Options) error {
	configPath := options.Config
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	driver, err := config.FromPath(configPath)
	if err != nil {
		return err
	}
	store, err := config.NewStore(driver)
	if err != nil {
		return err
	}
	if err := config.Normalize(store); err != nil {
		return err
	}
	cfg, err := store.GetConfig()
	if err != nil {
		return err
	}
	style, err := cfg.Style()
	if err != nil {
		return err
	}
	if cfg.Scale != 1 {
		slog.Warn("Display scaling is not supported on x11, running at scale 1")
	}

	b, err := backend.NewX11(backend.X11Options{
		Display:     options.Display,
		Background:  style.Background,
		Hotkeys:     app.Hotkeys(app.Bindings(cfg)),
		PointerMods: app.PrimaryMods(cfg.Modifier),
	})
	if err != nil {
		return err
	}
	defer b.Close()

	// Bus traffic feeding the loop. Subscriptions happen before anything
	// publishes.
	cmdC := make(chan any, 64)
	bus.Subscribe("wm", func(ctx context.Context, cmd bus.Command) error {
		select {
		case cmdC <- cmd:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	bus.Subscribe("wm", func(ctx context.Context, ev bus.ConfigFileChanged) error {
		select {
		case cmdC <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	super := sutureext.NewSimple("monotile")
	sutureext.Add(super, server.New(server.Options{
		Address: core.Address(options.Host, options.Port),
		Debug:   options.Debug,
		Config:  cfg,
	}))
	sutureext.Add(super, sutureext.NewServiceFunc("config.watch", func(ctx context.Context) error {
		return config.Watch(ctx, configPath, func() {
			bus.Publish(bus.ConfigFileChanged{Path: configPath})
		})
	}))
	super.ServeBackground(ctx)

	model := app.New(app.Options{
		Config: cfg,
		Style:  style,
		Area:   b.Area(),
	})

	return wm.Run(ctx, b, model, b.Events(), cmdC)
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
