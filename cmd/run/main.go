package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/image/draw"
	"golang.org/x/term"

	"github.com/wippyai/xr-bridge/actionmap"
	"github.com/wippyai/xr-bridge/config"
	"github.com/wippyai/xr-bridge/extension"
	"github.com/wippyai/xr-bridge/graphics"
	_ "github.com/wippyai/xr-bridge/graphics/software"
	"github.com/wippyai/xr-bridge/openxr"
	"github.com/wippyai/xr-bridge/wasmext"
	"github.com/wippyai/xr-bridge/xr"
	"github.com/wippyai/xr-bridge/xr/sim"
)

type options struct {
	configFile  string
	actionMap   string
	driver      string
	plugins     []string
	frames      int
	verbose     bool
	interactive bool
}

func main() {
	var (
		configFile  = flag.String("config", "", "Settings file (.toml, .yaml, .json)")
		frames      = flag.Int("frames", 90, "Frames to run in batch mode")
		driver      = flag.String("driver", "", "Graphics driver (default from settings)")
		actionMap   = flag.String("actionmap", "", "Action map YAML (default: built-in map)")
		plugins     = flag.String("plugin", "", "WebAssembly extension plugins (comma-separated)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	opts := options{
		configFile:  *configFile,
		actionMap:   *actionMap,
		driver:      *driver,
		frames:      *frames,
		verbose:     *verbose,
		interactive: *interactive,
	}
	if *plugins != "" {
		opts.plugins = strings.Split(*plugins, ",")
	}

	if opts.interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal, running in batch mode")
		opts.interactive = false
	}

	if opts.interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose, quiet bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

func setLoggers(l *zap.Logger) {
	openxr.SetLogger(l.Named("openxr"))
	extension.SetLogger(l.Named("extension"))
	graphics.SetLogger(l.Named("graphics"))
	wasmext.SetLogger(l.Named("plugin"))
}

// session is a bridge running against the simulator with an applied action map.
type session struct {
	rt      *sim.Runtime
	bridge  *openxr.Bridge
	host    *cliHost
	engine  *wasmext.Engine
	actions *actionmap.Result
	target  *image.RGBA
}

func loadActionMap(path string, cfg config.Settings) (*actionmap.Document, error) {
	if path == "" {
		path = cfg.DefaultActionMap
	}
	if path == "" {
		return actionmap.Default(), nil
	}
	return actionmap.Load(path)
}

func start(ctx context.Context, opts options, host *cliHost) (*session, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		if cfg, err = config.Load(opts.configFile); err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
	}
	doc, err := loadActionMap(opts.actionMap, cfg)
	if err != nil {
		return nil, fmt.Errorf("load action map: %w", err)
	}

	s := &session{rt: sim.New(sim.DefaultConfig()), host: host}
	registry := extension.NewRegistry()

	if len(opts.plugins) > 0 {
		if s.engine, err = wasmext.NewEngine(ctx, nil); err != nil {
			return nil, err
		}
		for _, path := range opts.plugins {
			p, err := s.engine.LoadFile(ctx, strings.TrimSpace(path))
			if err != nil {
				s.close(ctx)
				return nil, fmt.Errorf("load plugin: %w", err)
			}
			if err := registry.Register(p); err != nil {
				s.close(ctx)
				return nil, err
			}
		}
	}

	bopts := openxr.DefaultOptions()
	bopts.Registry = registry
	bopts.Host = host
	s.bridge = openxr.New(s.rt, cfg, bopts)
	host.bridge = s.bridge

	if err := s.bridge.Initialize(opts.driver); err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if s.actions, err = actionmap.Apply(s.bridge, doc); err != nil {
		s.close(ctx)
		return nil, err
	}
	if err := s.bridge.InitializeSession(); err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := actionmap.Attach(s.bridge, s.actions); err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("attach: %w", err)
	}

	w, h := s.bridge.RecommendedTargetSize()
	s.target = image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	return s, nil
}

func (s *session) close(ctx context.Context) {
	if s.bridge != nil {
		s.bridge.Finish()
	}
	if s.engine != nil {
		_ = s.engine.Close(ctx)
	}
}

// tick runs one host iteration and reports whether a frame was issued.
func (s *session) tick(ctx context.Context, n int) (bool, error) {
	if !s.bridge.Process() {
		return false, nil
	}
	if len(s.actions.ActionSets) > 0 {
		sets := make([]openxr.ActionSetID, 0, len(s.actions.ActionSets))
		for _, id := range s.actions.ActionSets {
			sets = append(sets, id)
		}
		if err := s.bridge.SyncActionSets(sets...); err != nil {
			return false, err
		}
	}
	if err := s.bridge.PreRender(ctx); err != nil {
		return false, err
	}
	if s.bridge.PreDrawViewport() {
		shade := uint8(n * 4)
		draw.Draw(s.target, s.target.Bounds(), &image.Uniform{C: color.RGBA{R: shade, G: 64, B: 255 - shade, A: 255}}, image.Point{}, draw.Src)
		if err := s.bridge.PostDrawViewport(ctx, s.target); err != nil {
			return false, err
		}
	}
	return true, s.bridge.EndFrame()
}

func run(opts options) error {
	ctx := context.Background()

	logger, err := newLogger(opts.verbose, false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	setLoggers(logger)

	host := newCLIHost(func(line string) { fmt.Println(line) })
	s, err := start(ctx, opts, host)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	b := s.bridge
	fmt.Printf("Runtime: %s\n", b.RuntimeName())
	fmt.Printf("System: %s\n", b.SystemProperties().SystemName)
	fmt.Printf("Views: %d\n", b.ViewCount())
	if name := b.Adapter().SwapchainFormatName(b.SwapchainFormat()); name != "" {
		fmt.Printf("Swapchain format: %s\n", name)
	}

	for i := 0; i < opts.frames; i++ {
		if i == opts.frames/2 {
			s.rt.SetInteractionProfile("/user/hand/left", "/interaction_profiles/oculus/touch_controller")
		}
		if _, err := s.tick(ctx, i); err != nil {
			logger.Warn("frame failed", zap.Int("frame", i), zap.Error(err))
		}
	}

	head := b.HeadCenter()
	fmt.Printf("\nFrames submitted: %d\n", len(s.rt.Frames()))
	fmt.Printf("Head: %v (%s)\n", head.Transform.Origin, head.Confidence)

	if err := b.RequestExit(); err != nil {
		return err
	}
	for i := 0; i < 8 && b.State() != xr.SessionStateExiting; i++ {
		b.Process()
	}
	fmt.Printf("Final state: %s\n", b.State())
	return nil
}

// cliHost prints bridge notifications.
type cliHost struct {
	bridge *openxr.Bridge
	out    func(string)
}

func newCLIHost(out func(string)) *cliHost {
	return &cliHost{out: out}
}

func (h *cliHost) OnStateReady()       { h.out("session ready") }
func (h *cliHost) OnStateVisible()     { h.out("session visible") }
func (h *cliHost) OnStateFocused()     { h.out("session focused") }
func (h *cliHost) OnStateStopping()    { h.out("session stopping") }
func (h *cliHost) OnStateLossPending() { h.out("session loss pending") }
func (h *cliHost) OnStateExiting()     { h.out("session exiting") }
func (h *cliHost) OnPoseRecentered()   { h.out("play space recentered") }

func (h *cliHost) TrackerProfileChanged(t openxr.TrackerID, p openxr.ProfileID) {
	h.out(fmt.Sprintf("%s -> %s", h.bridge.TrackerName(t), h.bridge.ProfileName(p)))
}

var (
	_ openxr.Host        = (*cliHost)(nil)
	_ openxr.LossHandler = (*cliHost)(nil)
)
