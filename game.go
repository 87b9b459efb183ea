package main

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/sceneviewer/assets"
	"github.com/milk9111/sceneviewer/config"
	"github.com/milk9111/sceneviewer/ecs"
	"github.com/milk9111/sceneviewer/ecs/component"
	"github.com/milk9111/sceneviewer/ecs/system"
	"github.com/milk9111/sceneviewer/history"
	"github.com/milk9111/sceneviewer/loading"
)

var background = color.NRGBA{R: 0x1e, G: 0x1f, B: 0x24, A: 0xff}

type Game struct {
	frames int
	debug  bool
	width  int
	height int
	log    *slog.Logger

	world     *ecs.World
	scheduler *ecs.Scheduler
	server    *assets.Server
	tracker   loading.Tracker
	drops     *loading.DropQueue
	journal   *history.Store
	keep      int

	paste   *pasteSource
	ui      *sceneUI
	opening atomic.Bool
}

func NewGame(cfg *config.Config, logger *slog.Logger, debug bool) (*Game, error) {
	policy, err := loading.ParseDropPolicy(cfg.Loading.DropPolicy)
	if err != nil {
		return nil, err
	}
	tracker, err := loading.NewTracker(cfg.Loading.Tracking)
	if err != nil {
		return nil, err
	}

	var classifier loading.Classifier = loading.ExtensionClassifier{CaseInsensitive: cfg.CaseInsensitive()}
	if cfg.Loading.RoutingScript != "" {
		sc, err := loading.LoadScriptClassifier(cfg.Loading.RoutingScript, classifier, logger)
		if err != nil {
			return nil, err
		}
		classifier = sc
	}

	server, err := assets.NewServer(assets.Options{
		Workers: cfg.Loading.Workers,
		Watch:   cfg.WatchForChanges(),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	g := &Game{
		debug:   debug,
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
		log:     logger,
		world:   ecs.NewWorld(),
		server:  server,
		tracker: tracker,
		drops:   &loading.DropQueue{},
		keep:    cfg.HistoryKeep(),
	}

	var journal system.Journal
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			_ = server.Close()
			return nil, err
		}
		g.journal = store
		journal = store
	}

	requests := ecs.NewQueue[loading.Request]()
	g.scheduler = ecs.NewScheduler(
		system.NewDropIntakeSystem(loading.Sources(windowDrops{}, g.drops), policy, classifier, requests, logger),
		system.NewLoadDispatchSystem(requests, loading.DispatcherOptions{
			Submitter:       server,
			Tracker:         tracker,
			DefaultSubScene: cfg.Loading.DefaultSubScene,
			Logger:          logger,
		}),
		system.NewLoadReconcileSystem(tracker, server, journal, logger),
		system.NewSceneSpawnSystem(server, logger),
	)

	g.paste = newPasteSource(logger)
	g.ui = newSceneUI(g)

	logger.Info("viewer ready",
		"drop_policy", policy,
		"tracking", cfg.Loading.Tracking,
		"workers", cfg.Loading.Workers,
		"watch", cfg.WatchForChanges(),
	)
	return g, nil
}

func (g *Game) Update() error {
	g.frames++

	g.handleHotkeys()
	g.ui.Update(g.world)
	g.scheduler.Update(g.world)

	return nil
}

func (g *Game) handleHotkeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)

	switch {
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.drops.PushPaths(g.paste.Paths()...)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.openDialog()
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		g.clearScenes()
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.debug = !g.debug
	}
}

// openDialog shows the native file dialog off the game loop. The chosen
// path is picked up by drop intake on a later tick.
func (g *Game) openDialog() {
	if !g.opening.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer g.opening.Store(false)
		path, err := openSceneDialog()
		if err != nil {
			g.log.Warn("open dialog", "error", err)
			return
		}
		g.drops.PushPaths(path)
	}()
}

func (g *Game) clearScenes() {
	system.RequestClearScenes(g.world)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.ui.Draw(screen)

	if g.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f    pending: %d    scenes: %d",
			ebiten.ActualFPS(), g.tracker.Pending(), ecs.Count(g.world, component.SceneInstanceComponent)))
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.width), float64(g.height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close stops the asset server and flushes the journal.
func (g *Game) Close() error {
	var errs []error
	if err := g.server.Close(); err != nil {
		errs = append(errs, err)
	}
	if g.journal != nil {
		if err := g.journal.Prune(g.keep); err != nil {
			errs = append(errs, err)
		}
		if err := g.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
