package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/jezek/xgb"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"

	"github.com/ItsNotGoodName/x-taskbar/internal/build"
	"github.com/ItsNotGoodName/x-taskbar/internal/bus"
	"github.com/ItsNotGoodName/x-taskbar/internal/config"
	"github.com/ItsNotGoodName/x-taskbar/internal/core"
	"github.com/ItsNotGoodName/x-taskbar/internal/notify"
	"github.com/ItsNotGoodName/x-taskbar/internal/panel"
	"github.com/ItsNotGoodName/x-taskbar/internal/server"
	"github.com/ItsNotGoodName/x-taskbar/internal/taskbar"
	"github.com/ItsNotGoodName/x-taskbar/internal/xsource"
	"github.com/ItsNotGoodName/x-taskbar/pkg/sutureext"
)

type Options struct {
	Debug  bool   `doc:"enable debug"`
	Host   string `doc:"host to listen on"`
	Port   int    `doc:"port to listen on" default:"8080"`
	Config string `doc:"config file" default:".x-taskbar.yaml"`
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

			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			store, err := config.NewStore(newDriver(configFilePath))
			if err != nil {
				return err
			}

			cfg, err := store.GetConfig()
			if err != nil {
				return err
			}
			if options.Debug {
				pp.Println(cfg)
			}

			conn, err := xgb.NewConn()
			if err != nil {
				return err
			}
			defer conn.Close()

			atoms, err := xsource.InternAtoms(conn)
			if err != nil {
				return err
			}
			source := xsource.NewSource(conn, atoms)
			inspector := xsource.NewInspector(conn, atoms)

			super := sutureext.NewSimple("x-taskbar")
			hub := bus.NewHub[panel.TaskEvent]().Register()

			var sinks []xsource.Sink
			var views []server.PanelView
			var registries []*taskbar.Registry
			for _, pc := range cfg.Panels {
				win, err := panel.CreateWindow(conn, atoms, uint16(pc.Height), pc.Position)
				if err != nil {
					return err
				}
				defer win.Destroy(conn)

				p := panel.New(pc.UUID, panel.Strip{
					Width:         int(win.Width),
					Height:        int(win.Height),
					MaxCellWidth:  pc.MaxCellWidth,
					MaxCellHeight: pc.MaxCellHeight,
				})

				cache := taskbar.NewCache(source)
				registry := taskbar.NewRegistry(taskbar.RegistryOptions{
					Cache:       cache,
					Inspector:   inspector,
					Watcher:     inspector,
					Observer:    p,
					PanelWindow: taskbar.Window(win.WID),
					Settings: taskbar.Settings{
						ShowAllDesktops: pc.ShowAllDesktops,
						ShowIconified:   pc.ShowIconified,
						ShowMapped:      pc.ShowMapped,
						AcceptSkipPager: pc.AcceptSkipPager,
						Tooltips:        pc.Tooltips,
						IconsOnly:       pc.IconsOnly,
						MouseWheel:      pc.MouseWheel,
						UrgencyFlash:    pc.UrgencyFlash,
						FlashInterval:   time.Duration(pc.FlashInterval) * time.Millisecond,
						IconSize:        pc.IconSize,
						MaxCellWidth:    pc.MaxCellWidth,
						MaxCellHeight:   pc.MaxCellHeight,
					},
				})
				defer registry.Close()
				cache.Subscribe(registry.RootProperty)

				sinks = append(sinks, xsource.Sink{Cache: cache, Registry: registry})
				views = append(views, server.PanelView{UUID: pc.UUID, Registry: registry, Cache: cache})
				registries = append(registries, registry)
				sutureext.Add(super, p)
			}

			sutureext.Add(super, xsource.NewListener(conn, atoms, sinks))

			if cfg.PollInterval > 0 {
				interval := time.Duration(cfg.PollInterval) * time.Second
				sutureext.Add(super, sutureext.NewServiceFunc("main.poller", func(ctx context.Context) error {
					ticker := time.NewTicker(interval)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return ctx.Err()
						case <-ticker.C:
							// Safety net against missed client-list
							// notifications.
							for _, sink := range sinks {
								sink.Cache.Trigger(taskbar.KindClientList)
							}
						}
					}
				}))
			}

			if cfg.HTTP.Enable {
				address := core.Address(options.Host, options.Port)
				sutureext.Add(super, server.New(address, views, hub))
			}

			if cfg.Notify.Enable {
				notifier, err := notify.New()
				if err != nil {
					slog.Warn("Desktop notifications unavailable", "error", err)
				} else {
					defer notifier.Close()
					notifier.Register()
				}
			}

			for _, registry := range registries {
				registry.Prime()
			}

			return super.Serve(ctx)
		})
	})

	cli.Root().Version = build.Current.Version

	cli.Run()
}

func newDriver(filePath string) config.Driver {
	if strings.HasSuffix(filePath, ".json") {
		return config.NewJSON(filePath)
	}
	return config.NewYAML(filePath)
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
