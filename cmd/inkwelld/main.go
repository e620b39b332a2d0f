// Command inkwelld serves a board over websockets, autosaving it to a
// snapshot file and optionally announcing it on the local network.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inkwell-board/inkwell"
	"github.com/inkwell-board/inkwell/capture"
	"github.com/inkwell-board/inkwell/persist"
	"github.com/inkwell-board/inkwell/server"
)

func main() {
	var (
		addr      = flag.String("addr", ":8888", "listen address")
		store     = flag.String("store", "board.json", "snapshot file")
		delay     = flag.Duration("save-delay", persist.DefaultDelay, "quiet period before autosave")
		fps       = flag.Int("fps", 60, "frame rate")
		width     = flag.Int("view-width", inkwell.DefaultViewportWidth, "frame width")
		height    = flag.Int("view-height", inkwell.DefaultViewportHeight, "frame height")
		smoothing = flag.String("smoothing", "std", "input smoothing: raw, std or arch")
		smart     = flag.Bool("smart", false, "recognise hand-drawn shapes")
		announce  = flag.Bool("mdns", false, "advertise the board over mDNS")
		name      = flag.String("name", "", "mDNS instance name (default host name)")
		browse    = flag.Bool("browse", false, "list boards on the local network and exit")
		verbose   = flag.Bool("v", false, "log debug output")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	inkwell.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *browse {
		addrs, err := server.Browse(3 * time.Second)
		if err != nil {
			log.Fatal(err)
		}
		for _, a := range addrs {
			os.Stdout.WriteString(a + "\n")
		}
		return
	}

	mode, err := capture.ParseMode(*smoothing)
	if err != nil {
		log.Fatal(err)
	}
	if *fps <= 0 {
		log.Fatalf("fps must be positive, got %d", *fps)
	}

	e := inkwell.New(
		inkwell.WithStore(persist.NewFileStore(*store)),
		inkwell.WithSaveDelay(*delay),
		inkwell.WithViewportSize(*width, *height),
		inkwell.WithSmoothing(mode),
		inkwell.WithSmartSnap(*smart),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := e.Load(ctx); err != nil {
		inkwell.Logger().Warn("starting with an empty board", "store", *store, "err", err)
	}

	if err := run(ctx, e, *addr, time.Second/time.Duration(*fps), *announce, *name); err != nil {
		log.Print(err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Close(closeCtx); err != nil {
		log.Fatalf("final save: %v", err)
	}
}

func run(ctx context.Context, e *inkwell.Editor, addr string, interval time.Duration, announce bool, name string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := server.New(e, server.WithFrameInterval(interval))
	hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

	if announce {
		port := ln.Addr().(*net.TCPAddr).Port
		md, err := server.Advertise(name, port)
		if err != nil {
			inkwell.Logger().Warn("mdns disabled", "err", err)
		} else {
			defer func() { _ = md.Shutdown() }()
			inkwell.Logger().Info("advertising board", "service", server.ServiceType, "port", port)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		inkwell.Logger().Info("server listening", "addr", ln.Addr().String())
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shut)
	})
	return g.Wait()
}
