/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loopwise-go/internal/common"
	"loopwise-go/internal/config"
	"loopwise-go/internal/httpserver"
	"loopwise-go/internal/listener"

	"go.uber.org/zap"
)

func main() {
	noSettle := flag.Bool("no-settle", false, "Disable the background settlement poller")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting Loopwise API server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("preferences", cfg.Preferences.Backend),
		zap.String("rail", cfg.Rail))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	var settler *listener.SettlementListener
	if !*noSettle {
		settler, err = listener.NewSettlementListener(listener.SettlementListenerConfig{
			Settler:         services.Controller,
			PollingInterval: cfg.Listener.PollingInterval,
		})
		if err != nil {
			zap.L().Fatal("Failed to create settlement listener", zap.Error(err))
		}
		if err := settler.Start(ctx); err != nil {
			zap.L().Fatal("Failed to start settlement listener", zap.Error(err))
		}
	}

	server := httpserver.NewServer(cfg.Server, services.Controller)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, stopping...")
	case err := <-serveErr:
		if err != nil {
			zap.L().Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced HTTP shutdown after timeout", zap.Error(err))
	}

	if settler != nil {
		done := make(chan struct{})
		go func() {
			settler.Stop()
			close(done)
		}()
		select {
		case <-done:
			report, lastRun := settler.LastReport()
			zap.L().Info("Settlement listener stopped gracefully",
				zap.Int("runs", settler.Runs()),
				zap.Time("last_run", lastRun),
				zap.Int("last_completed", report.TransfersCompleted))
		case <-shutdownCtx.Done():
			zap.L().Warn("Forced shutdown after timeout")
		}
	}
}
