package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"loopwise-go/internal/common"
	"loopwise-go/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	logPath := flag.String("log", "loopwise.log", "File that receives log output while the UI owns the terminal")
	flag.Parse()

	_, loggerCleanup := common.InitializeFileLogger(*logPath)
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	app := newModel(ctx, services.Controller, cfg.Listener.PollingInterval)
	defer app.unsubscribe()

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "loopwise: %v\n", err)
		zap.L().Error("UI exited with error", zap.Error(err))
	}
}
