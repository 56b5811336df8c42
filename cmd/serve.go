package cmd

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"avales/internal/bootstrap"
	"avales/internal/bootstrap/logging"
	"avales/internal/errs"
	"avales/internal/infrastructure/httpapi"
	avaluc "avales/internal/usecase/aval"
	"avales/internal/usecase/preview"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API for the aval workflow",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *avaluc.Service, projector *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.HTTP.Addr
		}

		server := &http.Server{
			Addr:    addr,
			Handler: httpapi.NewRouter(svc, projector),
		}

		logging.Info(ctx, "aval api server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "aval api server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve aval api")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to http.addr from config)")
}
