package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenloop-network/greenloop/internal/api"
	"github.com/greenloop-network/greenloop/internal/app/auditor"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ops HTTP server",
	Long: `Run the GreenLoop ops server: read-only ledger queries, chain
verification, badge listings, and Prometheus metrics. When a verify
interval is configured, a background auditor re-checks the audit chain
periodically.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	srv := api.NewServer(svcs.ledger, svcs.badges)
	if svcs.cfg.Ops.MetricsEnabled {
		srv.EnableMetrics()
	}

	aud := auditor.New(auditor.Config{Interval: svcs.cfg.VerifyInterval()}, svcs.ledger)
	srv.SetAuditor(aud)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	aud.Start(ctx)
	defer aud.Stop()

	addr := fmt.Sprintf("%s:%d", svcs.cfg.Ops.Host, svcs.cfg.Ops.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[daemon] ops server listening on http://%s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[daemon] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
