package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/sceneviewer/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (embedded default when empty)")
	debug := flag.Bool("debug", false, "enable debug logging and the debug overlay")
	policy := flag.String("policy", "", "drop policy override: all or last")
	historyPath := flag.String("history", "", "LevelDB directory for the load outcome journal")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if *policy != "" {
		cfg.Loading.DropPolicy = *policy
	}
	if *historyPath != "" {
		cfg.History.Path = *historyPath
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	game, err := NewGame(cfg, logger, *debug)
	if err != nil {
		logger.Error("start viewer", "error", err)
		os.Exit(1)
	}
	// Files named on the command line load as if dropped on the first tick.
	game.drops.PushPaths(flag.Args()...)

	runErr := ebiten.RunGame(game)
	if err := game.Close(); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	if runErr != nil {
		logger.Error("run viewer", "error", runErr)
		os.Exit(1)
	}
}
