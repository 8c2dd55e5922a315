package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/readcheck/internal/auth"
	"github.com/abhisek/readcheck/internal/metrics"
	"github.com/abhisek/readcheck/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the grading HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.Server.Addr = addr
		}
		if e.cfg.Server.JWTSecret == "" {
			e.log.Warn("server.jwt_secret is empty; every request will be treated as a guest")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m := metrics.New(nil)
		srv := server.New(server.Deps{
			Grader:      e.gradingService(ctx, m),
			Passages:    e.store.PassageRepo(),
			Attempts:    e.store.AttemptRepo(),
			Tokens:      auth.NewTokens(e.cfg.Server.JWTSecret, e.cfg.Server.TokenTTL),
			Metrics:     m,
			Log:         e.log,
			CORSOrigins: e.cfg.Server.CORSOrigins,
		})
		return srv.ListenAndServe(ctx, e.cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides READCHECK_SERVER_ADDR)")
}
