package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"avales/internal/bootstrap"
	"avales/internal/bootstrap/logging"
	"avales/internal/errs"
	avaluc "avales/internal/usecase/aval"
	"avales/internal/usecase/preview"
)

var eventoCmd = &cobra.Command{
	Use:   "evento",
	Short: "Manage competition events",
}

var eventoRegistrarCmd = &cobra.Command{
	Use:   "registrar",
	Short: "Register a competition event",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		nombre, _ := cmd.Flags().GetString("nombre")
		lugar, _ := cmd.Flags().GetString("lugar")
		inicio, _ := cmd.Flags().GetString("inicio")
		fin, _ := cmd.Flags().GetString("fin")
		masculinos, _ := cmd.Flags().GetInt("cupos-masculinos")
		femeninos, _ := cmd.Flags().GetInt("cupos-femeninos")
		disponible, _ := cmd.Flags().GetBool("disponible")

		eventoID, err := svc.RegistrarEvento(ctx, avaluc.RegistrarEventoInput{
			Nombre:          nombre,
			Lugar:           lugar,
			FechaInicio:     inicio,
			FechaFin:        fin,
			CuposMasculinos: masculinos,
			CuposFemeninos:  femeninos,
			Disponible:      disponible,
		})
		if err != nil {
			logging.Error(ctx, "register evento failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register evento")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "evento registrado: %s\n", eventoID); err != nil {
			return errs.Wrap(err, "write registrar output")
		}
		return nil
	}),
}

var eventoListarCmd = &cobra.Command{
	Use:   "listar",
	Short: "List registered events",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		soloDisponibles, _ := cmd.Flags().GetBool("disponibles")

		eventos, err := svc.ListEventos(ctx, soloDisponibles)
		if err != nil {
			logging.Error(ctx, "list eventos failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list eventos")
		}

		out := cmd.OutOrStdout()
		for _, evento := range eventos {
			fmt.Fprintf(out, "%s %s (%s, %s a %s) cupos=%dM/%dF disponible=%v\n",
				evento.EventoID, evento.Nombre, evento.Lugar,
				evento.FechaInicio, evento.FechaFin,
				evento.CuposMasculinos, evento.CuposFemeninos, evento.Disponible)
		}
		fmt.Fprintf(out, "total: %d\n", len(eventos))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(eventoCmd)
	eventoCmd.AddCommand(eventoRegistrarCmd)
	eventoCmd.AddCommand(eventoListarCmd)

	eventoRegistrarCmd.Flags().String("nombre", "", "Event name")
	eventoRegistrarCmd.Flags().String("lugar", "", "Event location")
	eventoRegistrarCmd.Flags().String("inicio", "", "Start date (YYYY-MM-DD)")
	eventoRegistrarCmd.Flags().String("fin", "", "End date (YYYY-MM-DD)")
	eventoRegistrarCmd.Flags().Int("cupos-masculinos", 0, "Required male athlete headcount")
	eventoRegistrarCmd.Flags().Int("cupos-femeninos", 0, "Required female athlete headcount")
	eventoRegistrarCmd.Flags().Bool("disponible", true, "Whether avales can be requested against the event")
	_ = eventoRegistrarCmd.MarkFlagRequired("nombre")
	_ = eventoRegistrarCmd.MarkFlagRequired("inicio")
	_ = eventoRegistrarCmd.MarkFlagRequired("fin")

	eventoListarCmd.Flags().Bool("disponibles", false, "Only available events")
}
