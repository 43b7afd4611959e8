package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/ayusman/motionpoke/internal/app"
	"github.com/ayusman/motionpoke/internal/config"
	"github.com/ayusman/motionpoke/internal/display"
	"github.com/ayusman/motionpoke/internal/menu"
	"github.com/ayusman/motionpoke/internal/sound"
	"github.com/ayusman/motionpoke/internal/store"
	"github.com/ayusman/motionpoke/internal/tray"
)

var (
	configPath  = flag.String("config", "", "path to an INI configuration file")
	displayKind = flag.String("display", "", "override display.kind: window, terminal or none")
	device      = flag.String("device", "", "override camera.device: index, file or capture pipeline")
	journalPath = flag.String("journal", "", "override journal.path; enables the session journal")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	if *displayKind != "" {
		cfg.Display.Kind = *displayKind
	}
	if *device != "" {
		cfg.Camera.Device = *device
	}
	if *journalPath != "" {
		cfg.Journal.Path = *journalPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := make(chan display.Key, 1)
	send := func(k display.Key) {
		select {
		case keys <- k:
		default:
		}
	}

	var t *tray.Tray
	if cfg.Tray.Enabled {
		t = tray.New()
		t.OnMenu(func() { send(display.KeyMenu) })
		t.OnQuit(func() { send(display.KeyQuit) })
	}

	if t == nil {
		if err := run(ctx, cfg, keys, nil); err != nil {
			glog.Flush()
			glog.Exitf("%v", err)
		}
		return
	}

	// The tray owns the main goroutine; the loop runs beside it.
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, keys, t)
		t.Quit()
	}()
	t.Run()

	if err := <-errCh; err != nil {
		glog.Flush()
		glog.Exitf("%v", err)
	}
}

func run(ctx context.Context, cfg config.Config, keys <-chan display.Key, t *tray.Tray) error {
	d, err := display.New(cfg.Display)
	if err != nil {
		return err
	}
	defer d.Close()

	opts := app.Options{
		Display: display.WithInputs(d, keys),
	}

	if cfg.Journal.Path != "" {
		st, err := store.New(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Journal = app.NewStoreJournal(st)
		glog.Infof("journal at %s", cfg.Journal.Path)
	}

	chime := sound.New(cfg.Sound.Enabled)
	if err := chime.Init(); err != nil {
		glog.Warningf("sound disabled: %v", err)
	}
	defer chime.Close()
	opts.Chime = chime

	if t != nil {
		opts.OnMode = func(m menu.Mode) { t.SetMode(m.String()) }
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}
