package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/api"
	"github.com/wonny/radar/internal/api/handlers"
	"github.com/wonny/radar/internal/s0_data"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  POST /api/classify         - 단일 스냅샷 분류
  GET  /api/classify/{date}/{symbol} - DB 단건 분류
  POST /api/scan             - 스냅샷 문서 분류
  GET  /api/scan/{date}      - DB 스냅샷 분류 (DATABASE_URL 필요)
  GET  /api/rules            - 활성 룰 버전
  GET  /metrics              - Prometheus metrics

Example:
  go run ./cmd/radar api
  go run ./cmd/radar api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	if apiPort != "" {
		rt.cfg.Port = apiPort
	}
	log := rt.log

	log.WithFields(map[string]interface{}{
		"port":  rt.cfg.Port,
		"env":   rt.cfg.Env,
		"rules": rt.rules.Meta.StrategyID,
	}).Info("Initializing API server")

	res, err := openResources(cmd.Context(), rt)
	if err != nil {
		return err
	}
	defer res.Close()

	m := rt.metricsRegistry()
	orch, err := rt.orchestrator(m)
	if err != nil {
		return err
	}

	screening := handlers.NewScreeningHandler(orch, res.snapshotSource(rt, true), log)
	if res.db != nil {
		screening.WithLookup(s0_data.NewSnapshotRepository(res.db.Pool))
	}

	router := api.NewRouter(api.RouterDeps{
		Screening: screening,
		Health:    handlers.NewHealthHandler(res.db, res.redis),
		Metrics:   m,
		Limiter:   api.NewLimiter(rt.cfg.API.RateLimit, rt.cfg.API.RateBurst),
		Logger:    log,
	})
	server := api.New(rt.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server listening on %s", server.Addr()))
	PrintInfo(out, "Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
