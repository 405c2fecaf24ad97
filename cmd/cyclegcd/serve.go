// Copyright (C) 2026 Vireo Labs
// Licensed under the GNU Affero General Public License v3.0. See LICENSE.

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vireolabs/cyclegc/internal/config"
	"github.com/vireolabs/cyclegc/internal/history"
	"github.com/vireolabs/cyclegc/internal/server"
	"github.com/vireolabs/cyclegc/internal/telemetry"
	"github.com/vireolabs/cyclegc/pkg/cyclegc"
	"github.com/vireolabs/cyclegc/pkg/logging"
)

var (
	serveAddr         string
	serveHistoryDir   string
	serveInfluxAddr   string
	serveInfluxOrg    string
	serveInfluxBucket string
	serveInfluxToken  string
	serveLogTailSize  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the operator HTTP+WebSocket surface over a new, empty in-process Context",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultServerAddr, "listen address")
	serveCmd.Flags().StringVar(&serveHistoryDir, "history-dir", "", "badger directory for collection-pass history (disabled when empty)")
	serveCmd.Flags().StringVar(&serveInfluxAddr, "influx-addr", "", "InfluxDB server URL; metrics are only pushed when set")
	serveCmd.Flags().StringVar(&serveInfluxOrg, "influx-org", "", "InfluxDB organization")
	serveCmd.Flags().StringVar(&serveInfluxBucket, "influx-bucket", "", "InfluxDB bucket")
	serveCmd.Flags().StringVar(&serveInfluxToken, "influx-token", "", "InfluxDB API token")
	serveCmd.Flags().IntVar(&serveLogTailSize, "log-tail", 200, "number of recent log entries exposed on GET /logs")
}

func runServe(cmd *cobra.Command, args []string) error {
	var traceBuf bytes.Buffer
	tp, err := telemetry.NewTracerProvider(telemetry.ProviderConfig{ServiceName: "cyclegcd", TraceWriter: &traceBuf})
	if err != nil {
		return fmt.Errorf("build tracer provider: %w", err)
	}
	mp, _, err := telemetry.NewMeterProvider(telemetry.ProviderConfig{ServiceName: "cyclegcd"})
	if err != nil {
		return fmt.Errorf("build meter provider: %w", err)
	}
	defer telemetry.Shutdown(context.Background(), mp, tp)

	otelRecorder, err := telemetry.NewOtelRecorder(tp, mp, "")
	if err != nil {
		return fmt.Errorf("build otel recorder: %w", err)
	}
	recorders := []cyclegc.Recorder{otelRecorder}

	var historyStore *history.Store
	if serveHistoryDir != "" {
		historyStore, err = history.Open(history.Config{Path: serveHistoryDir})
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer historyStore.Close()
		recorders = append(recorders, history.NewRecorder(historyStore, nil))
	}

	if serveInfluxAddr != "" {
		influxRec, closeInflux, err := newInfluxRecorder(serveInfluxAddr, serveInfluxToken, serveInfluxOrg, serveInfluxBucket)
		if err != nil {
			return fmt.Errorf("connect to influxdb: %w", err)
		}
		defer closeInflux()
		recorders = append(recorders, influxRec)
	}

	var srv *server.Server
	fanout := &fanoutRecorder{recorders: recorders}
	fanout.onCycles = func(int) {
		if srv != nil {
			srv.NotifyCollected()
		}
	}

	logTail := logging.NewRingTail(serveLogTailSize)
	logger := logging.New(logging.Config{Level: logging.LevelInfo, Service: "cyclegcd", Tail: logTail})
	defer logger.Close()

	ctx := cyclegc.NewContext(cyclegc.WithRecorder(fanout), cyclegc.WithLogger(logger))

	opts := []server.Option{server.WithLogTail(logTail)}
	if historyStore != nil {
		opts = append(opts, server.WithHistory(historyStore))
	}
	srv = server.New(ctx, "cyclegcd", opts...)

	httpServer := &http.Server{Addr: serveAddr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("cyclegcd serving on %s (Ctrl+C to stop)\n", serveAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
