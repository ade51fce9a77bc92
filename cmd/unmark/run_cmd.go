// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/unmark/internal/config"
	"github.com/ManuGH/unmark/internal/geometry"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/orchestrator"
	"github.com/ManuGH/unmark/internal/session"
	"github.com/ManuGH/unmark/internal/version"
)

// oneShot holds the parsed flags of the run command.
type oneShot struct {
	configPath string
	file       string
	roi        string
	native     string
	display    string
	drag       string
	method     string
	quality    string
	out        string
	timeout    time.Duration
}

// regionPlan describes how the region is fed to the selector.
type regionPlan struct {
	nativeW, nativeH   int
	displayW, displayH float64
	from, to           geometry.Point
}

func runOneShot(args []string, stdout, stderr io.Writer) int {
	var o oneShot
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&o.file, "file", "", "video file to process")
	fs.StringVar(&o.roi, "roi", "", "region in native pixels: x,y,width,height")
	fs.StringVar(&o.native, "native", "", "native video size WxH (with -drag, or to bound -roi)")
	fs.StringVar(&o.display, "display", "", "display box size WxH used by -drag")
	fs.StringVar(&o.drag, "drag", "", "drag gesture in display pixels: x1,y1,x2,y2")
	fs.StringVar(&o.method, "method", "", "inpainting method (telea, ns)")
	fs.StringVar(&o.quality, "quality", "", "quality preset (fast, balanced, better, best, ultra)")
	fs.StringVar(&o.out, "out", "", "download directory")
	fs.DurationVar(&o.timeout, "timeout", 0, "overall deadline; zero waits indefinitely")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if o.file == "" {
		fmt.Fprintln(stderr, "run: -file is required")
		return 2
	}
	plan, err := o.plan()
	if err != nil {
		fmt.Fprintf(stderr, "run: %v\n", err)
		return 2
	}

	xlog.Configure(xlog.Config{Level: "info", Service: serviceName, Version: version.Version})
	cfg, err := config.NewLoader(o.configPath, version.Version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "run: load config: %v\n", err)
		return 1
	}
	xlog.Reconfigure(xlog.Config{Level: cfg.Logging.Level, Service: serviceName, Version: cfg.Version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	path, n, err := o.execute(ctx, cfg, plan)
	if err != nil {
		if fail, ok := orchestrator.AsFailure(err); ok {
			fmt.Fprintf(stderr, "run: %s\n", fail.Message)
		} else {
			fmt.Fprintf(stderr, "run: %v\n", err)
		}
		return 1
	}
	fmt.Fprintf(stdout, "%s (%d bytes)\n", path, n)
	return 0
}

// execute walks one session from file choice to download.
func (o oneShot) execute(ctx context.Context, cfg config.AppConfig, plan *regionPlan) (string, int64, error) {
	client, err := newBackendClient(cfg, nil)
	if err != nil {
		return "", 0, err
	}
	scfg := sessionConfig(cfg)
	scfg.SyncInterval = -1
	if o.out != "" {
		scfg.DownloadDir = o.out
	}
	ctrl := session.NewController(client, scfg)
	defer func() { _ = ctrl.Close() }()
	ctrl.SetProcessOptions(strings.ToLower(o.method), strings.ToLower(o.quality))

	f, err := orchestrator.OpenVideo(o.file)
	if err != nil {
		return "", 0, err
	}
	if err := ctrl.ChooseFile(f); err != nil {
		return "", 0, err
	}
	if err := startAndWait(ctx, ctrl.StartUpload); err != nil {
		return "", 0, err
	}

	if plan != nil {
		if err := applyRegion(ctrl, *plan); err != nil {
			return "", 0, err
		}
	}
	if err := startAndWait(ctx, ctrl.StartProcess); err != nil {
		return "", 0, err
	}
	return ctrl.Download(ctx)
}

func startAndWait(ctx context.Context, start func(context.Context) (*session.Call, error)) error {
	call, err := start(ctx)
	if err != nil {
		return err
	}
	return call.Wait(ctx)
}

// applyRegion replays the planned gesture through the selector.
func applyRegion(ctrl *session.Controller, p regionPlan) error {
	if err := ctrl.LoadMedia(p.nativeW, p.nativeH); err != nil {
		return err
	}
	if err := ctrl.Fit(p.displayW, p.displayH); err != nil {
		return err
	}
	started, err := ctrl.PointerDown(p.from)
	if err != nil {
		return err
	}
	if !started {
		return errors.New("region selection did not start")
	}
	if _, err := ctrl.PointerMove(p.to); err != nil {
		return err
	}
	if _, ok, err := ctrl.PointerUp(); err != nil {
		return err
	} else if !ok {
		return orchestrator.NewUserInput(orchestrator.ReasonMissingRegion, orchestrator.MsgDrawRegion)
	}
	return nil
}

// plan turns the region flags into a gesture. A nil plan means no
// region was requested.
func (o oneShot) plan() (*regionPlan, error) {
	switch {
	case o.roi != "" && o.drag != "":
		return nil, errors.New("-roi and -drag are mutually exclusive")
	case o.roi != "":
		v, err := parseInts(o.roi, 4)
		if err != nil {
			return nil, fmt.Errorf("-roi: %w", err)
		}
		x, y, w, h := v[0], v[1], v[2], v[3]
		if x < 0 || y < 0 || w <= 0 || h <= 0 {
			return nil, fmt.Errorf("-roi: %q is not a positive rectangle", o.roi)
		}
		nw, nh := x+w, y+h
		if o.native != "" {
			if nw, nh, err = parseSize(o.native); err != nil {
				return nil, fmt.Errorf("-native: %w", err)
			}
			if x+w > nw || y+h > nh {
				return nil, fmt.Errorf("-roi: %q exceeds native size %dx%d", o.roi, nw, nh)
			}
		}
		// Display space equal to native space maps the rectangle one to one.
		return &regionPlan{
			nativeW: nw, nativeH: nh,
			displayW: float64(nw), displayH: float64(nh),
			from: geometry.Point{X: float64(x), Y: float64(y)},
			to:   geometry.Point{X: float64(x + w), Y: float64(y + h)},
		}, nil
	case o.drag != "":
		if o.native == "" || o.display == "" {
			return nil, errors.New("-drag needs -native and -display")
		}
		nw, nh, err := parseSize(o.native)
		if err != nil {
			return nil, fmt.Errorf("-native: %w", err)
		}
		dw, dh, err := parseSize(o.display)
		if err != nil {
			return nil, fmt.Errorf("-display: %w", err)
		}
		v, err := parseFloats(o.drag, 4)
		if err != nil {
			return nil, fmt.Errorf("-drag: %w", err)
		}
		return &regionPlan{
			nativeW: nw, nativeH: nh,
			displayW: float64(dw), displayH: float64(dh),
			from: geometry.Point{X: v[0], Y: v[1]},
			to:   geometry.Point{X: v[2], Y: v[3]},
		}, nil
	}
	return nil, nil
}

// parseSize parses "WxH" with positive dimensions.
func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	wi, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if wi <= 0 || hi <= 0 {
		return 0, 0, fmt.Errorf("size %q: dimensions must be positive", s)
	}
	return wi, hi, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
