package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"avales/internal/bootstrap"
	"avales/internal/bootstrap/logging"
	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
	avaluc "avales/internal/usecase/aval"
	"avales/internal/usecase/preview"
)

var avalCmd = &cobra.Command{
	Use:   "aval",
	Short: "Manage aval requests and their approval workflow",
}

var avalCrearCmd = &cobra.Command{
	Use:   "crear",
	Short: "Create a draft aval against an available evento",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventoID, _ := cmd.Flags().GetString("evento")
		convocatoria, _ := cmd.Flags().GetString("convocatoria")

		detalle, err := svc.CrearBorrador(ctx, avaluc.CrearBorradorInput{
			EventoID:     eventoID,
			Convocatoria: convocatoria,
			Principal:    principalFromFlags(cmd),
		})
		if err != nil {
			logging.Error(ctx, "create aval draft failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create aval draft")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "aval creado: %s codigo=%s\n", detalle.AvalID, detalle.Codigo); err != nil {
			return errs.Wrap(err, "write crear output")
		}
		return nil
	}),
}

var avalEnviarCmd = &cobra.Command{
	Use:   "enviar",
	Short: "Submit a draft with its expediente tecnico",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		avalID, _ := cmd.Flags().GetString("aval")
		payload, err := resolvePayload(cmd)
		if err != nil {
			return err
		}

		var expediente domainaval.ExpedienteTecnico
		if err := json.Unmarshal(payload, &expediente); err != nil {
			return errs.Wrap(err, "decode expediente")
		}

		if err := svc.Enviar(ctx, avaluc.EnviarInput{
			AvalID:     avalID,
			Principal:  principalFromFlags(cmd),
			Expediente: expediente,
		}); err != nil {
			logging.Error(ctx, "submit aval failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "submit aval")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "aval enviado: %s\n", avalID); err != nil {
			return errs.Wrap(err, "write enviar output")
		}
		return nil
	}),
}

var avalArtefactoCmd = &cobra.Command{
	Use:   "artefacto",
	Short: "Save the stage artifact for the aval's current etapa",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		avalID, _ := cmd.Flags().GetString("aval")
		etapa, _ := cmd.Flags().GetString("etapa")
		payload, err := resolvePayload(cmd)
		if err != nil {
			return err
		}

		if err := svc.GuardarArtefacto(ctx, avaluc.GuardarArtefactoInput{
			AvalID:    avalID,
			Etapa:     domainaval.Etapa(strings.ToUpper(etapa)),
			Principal: principalFromFlags(cmd),
			Payload:   payload,
		}); err != nil {
			logging.Error(ctx, "save artefacto failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "save artefacto")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "artefacto guardado: %s etapa=%s\n", avalID, strings.ToUpper(etapa)); err != nil {
			return errs.Wrap(err, "write artefacto output")
		}
		return nil
	}),
}

var avalAprobarCmd = &cobra.Command{
	Use:   "aprobar",
	Short: "Approve the aval's current etapa",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		avalID, _ := cmd.Flags().GetString("aval")
		etapa, _ := cmd.Flags().GetString("etapa")

		if err := svc.Aprobar(ctx, avaluc.AprobarInput{
			AvalID:    avalID,
			Etapa:     domainaval.Etapa(strings.ToUpper(etapa)),
			Principal: principalFromFlags(cmd),
		}); err != nil {
			logging.Error(ctx, "approve aval failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "approve aval")
		}

		detalle, err := svc.GetAval(ctx, avalID)
		if err != nil {
			return errs.Wrap(err, "reload aval")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "aval %s: estado=%s etapa=%s\n", avalID, detalle.Estado, detalle.EtapaActual); err != nil {
			return errs.Wrap(err, "write aprobar output")
		}
		return nil
	}),
}

var avalRechazarCmd = &cobra.Command{
	Use:   "rechazar",
	Short: "Reject the aval at its current etapa",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		avalID, _ := cmd.Flags().GetString("aval")
		etapa, _ := cmd.Flags().GetString("etapa")
		motivo, _ := cmd.Flags().GetString("motivo")

		if err := svc.Rechazar(ctx, avaluc.RechazarInput{
			AvalID:    avalID,
			Etapa:     domainaval.Etapa(strings.ToUpper(etapa)),
			Principal: principalFromFlags(cmd),
			Motivo:    motivo,
		}); err != nil {
			logging.Error(ctx, "reject aval failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "reject aval")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "aval rechazado: %s\n", avalID); err != nil {
			return errs.Wrap(err, "write rechazar output")
		}
		return nil
	}),
}

var avalCancelarCmd = &cobra.Command{
	Use:   "cancelar",
	Short: "Withdraw an aval (creator or admin only)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		avalID, _ := cmd.Flags().GetString("aval")

		if err := svc.Cancelar(ctx, avaluc.CancelarInput{
			AvalID:    avalID,
			Principal: principalFromFlags(cmd),
		}); err != nil {
			logging.Error(ctx, "cancel aval failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "cancel aval")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "aval cancelado: %s\n", avalID); err != nil {
			return errs.Wrap(err, "write cancelar output")
		}
		return nil
	}),
}

var avalVerCmd = &cobra.Command{
	Use:   "ver",
	Short: "Show aval detail with historial and artefactos",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		avalID, _ := cmd.Flags().GetString("aval")

		detalle, err := svc.GetAval(ctx, avalID)
		if err != nil {
			logging.Error(ctx, "show aval failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "show aval")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", detalle.Codigo, detalle.AvalID)
		fmt.Fprintf(out, "estado: %s  etapa: %s\n", detalle.Estado, detalle.EtapaActual)
		fmt.Fprintf(out, "evento: %s  creador: %s\n", detalle.EventoID, detalle.CreadorID)
		if len(detalle.Historial) > 0 {
			fmt.Fprintln(out, "historial:")
			for _, entrada := range detalle.Historial {
				linea := fmt.Sprintf("  #%d %s %s por %s", entrada.Seq, entrada.Resultado, entrada.Etapa, entrada.ActorID)
				if entrada.Motivo != "" {
					linea += " motivo=" + entrada.Motivo
				}
				fmt.Fprintln(out, linea)
			}
		}
		if len(detalle.Artefactos) > 0 {
			fmt.Fprintln(out, "artefactos:")
			for _, artefacto := range detalle.Artefactos {
				fmt.Fprintf(out, "  %s por %s (%s)\n", artefacto.Etapa, artefacto.CreadoPor, artefacto.ActualizadoEn)
			}
		}
		return nil
	}),
}

var avalListarCmd = &cobra.Command{
	Use:   "listar",
	Short: "List avales",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *avaluc.Service, _ *preview.Projector) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		estado, _ := cmd.Flags().GetString("estado")
		creador, _ := cmd.Flags().GetString("creador")
		evento, _ := cmd.Flags().GetString("evento")

		items, err := svc.ListAvales(ctx, ports.AvalFilter{
			Estado:    strings.ToUpper(strings.TrimSpace(estado)),
			CreadorID: creador,
			EventoID:  evento,
		})
		if err != nil {
			logging.Error(ctx, "list avales failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list avales")
		}

		out := cmd.OutOrStdout()
		for _, item := range items {
			fmt.Fprintf(out, "%s %s estado=%s etapa=%s evento=%s\n", item.Codigo, item.AvalID, item.Estado, item.EtapaActual, item.EventoID)
		}
		fmt.Fprintf(out, "total: %d\n", len(items))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(avalCmd)
	avalCmd.AddCommand(avalCrearCmd)
	avalCmd.AddCommand(avalEnviarCmd)
	avalCmd.AddCommand(avalArtefactoCmd)
	avalCmd.AddCommand(avalAprobarCmd)
	avalCmd.AddCommand(avalRechazarCmd)
	avalCmd.AddCommand(avalCancelarCmd)
	avalCmd.AddCommand(avalVerCmd)
	avalCmd.AddCommand(avalListarCmd)

	for _, sub := range []*cobra.Command{
		avalCrearCmd, avalEnviarCmd, avalArtefactoCmd,
		avalAprobarCmd, avalRechazarCmd, avalCancelarCmd,
	} {
		sub.Flags().String("usuario", "", "Acting user id")
		sub.Flags().StringSlice("rol", nil, "Acting user role(s)")
		sub.Flags().String("disciplina", "", "Acting user's disciplina id")
		_ = sub.MarkFlagRequired("usuario")
	}

	avalCrearCmd.Flags().String("evento", "", "Evento id")
	avalCrearCmd.Flags().String("convocatoria", "", "Convocatoria document reference")
	_ = avalCrearCmd.MarkFlagRequired("evento")
	_ = avalCrearCmd.MarkFlagRequired("convocatoria")

	avalEnviarCmd.Flags().String("aval", "", "Aval id")
	avalEnviarCmd.Flags().String("payload", "", "Expediente JSON inline")
	avalEnviarCmd.Flags().String("payload-file", "", "Expediente JSON file")
	_ = avalEnviarCmd.MarkFlagRequired("aval")

	avalArtefactoCmd.Flags().String("aval", "", "Aval id")
	avalArtefactoCmd.Flags().String("etapa", "", "Etapa key, for example REVISION_DTM")
	avalArtefactoCmd.Flags().String("payload", "", "Artifact JSON inline")
	avalArtefactoCmd.Flags().String("payload-file", "", "Artifact JSON file")
	_ = avalArtefactoCmd.MarkFlagRequired("aval")
	_ = avalArtefactoCmd.MarkFlagRequired("etapa")

	avalAprobarCmd.Flags().String("aval", "", "Aval id")
	avalAprobarCmd.Flags().String("etapa", "", "Etapa key being approved")
	_ = avalAprobarCmd.MarkFlagRequired("aval")
	_ = avalAprobarCmd.MarkFlagRequired("etapa")

	avalRechazarCmd.Flags().String("aval", "", "Aval id")
	avalRechazarCmd.Flags().String("etapa", "", "Etapa key being rejected")
	avalRechazarCmd.Flags().String("motivo", "", "Rejection reason")
	_ = avalRechazarCmd.MarkFlagRequired("aval")
	_ = avalRechazarCmd.MarkFlagRequired("etapa")
	_ = avalRechazarCmd.MarkFlagRequired("motivo")

	avalCancelarCmd.Flags().String("aval", "", "Aval id")
	_ = avalCancelarCmd.MarkFlagRequired("aval")

	avalVerCmd.Flags().String("aval", "", "Aval id")
	_ = avalVerCmd.MarkFlagRequired("aval")

	avalListarCmd.Flags().String("estado", "", "Filter by estado")
	avalListarCmd.Flags().String("creador", "", "Filter by creator user id")
	avalListarCmd.Flags().String("evento", "", "Filter by evento id")
}

func principalFromFlags(cmd *cobra.Command) domainaval.Principal {
	usuario, _ := cmd.Flags().GetString("usuario")
	roles, _ := cmd.Flags().GetStringSlice("rol")
	disciplina, _ := cmd.Flags().GetString("disciplina")

	parsed := make([]domainaval.Rol, 0, len(roles))
	for _, raw := range roles {
		rol := strings.ToUpper(strings.TrimSpace(raw))
		if rol == "" {
			continue
		}
		parsed = append(parsed, domainaval.Rol(rol))
	}

	return domainaval.Principal{
		UsuarioID:    strings.TrimSpace(usuario),
		Roles:        parsed,
		DisciplinaID: strings.TrimSpace(disciplina),
	}
}

func resolvePayload(cmd *cobra.Command) ([]byte, error) {
	inline, _ := cmd.Flags().GetString("payload")
	file, _ := cmd.Flags().GetString("payload-file")

	if strings.TrimSpace(inline) != "" && strings.TrimSpace(file) != "" {
		return nil, errors.New("payload and payload-file are mutually exclusive")
	}

	if strings.TrimSpace(file) != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, errs.Wrapf(err, "read payload file %q", file)
		}
		return raw, nil
	}

	if strings.TrimSpace(inline) == "" {
		return nil, errors.New("payload is required (set --payload or --payload-file)")
	}
	return []byte(inline), nil
}
