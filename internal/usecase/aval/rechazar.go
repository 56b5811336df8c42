package aval

import (
	"context"
	"errors"
	"strings"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// Rechazar rejects the aval at the etapa whose review it is waiting on.
// The history entry keeps the rejected etapa and the motivo; the aval
// turns RECHAZADO, which is terminal.
func (s *Service) Rechazar(ctx context.Context, input RechazarInput) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("aval repository is required")
	}
	if s.uow == nil {
		return errors.New("aval unit of work is required")
	}

	motivo := strings.TrimSpace(input.Motivo)
	if motivo == "" {
		return &domainaval.ValidationError{Campo: "motivo", Detalle: "se requiere el motivo del rechazo"}
	}
	if !domainaval.EsEtapaValida(input.Etapa) {
		return &domainaval.ValidationError{Campo: "etapa", Detalle: "etapa desconocida: " + string(input.Etapa)}
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		avalRow, err := s.repo.GetAval(txCtx, input.AvalID)
		if err != nil {
			return err
		}
		if avalRow.Estado != string(domainaval.EstadoSolicitado) {
			return &domainaval.StateError{
				Op:      "rechazar",
				Estado:  domainaval.Estado(avalRow.Estado),
				Etapa:   input.Etapa,
				Detalle: "el aval no esta en revision",
			}
		}

		pendiente, err := s.etapaPendienteDe(txCtx, avalRow.AvalID)
		if err != nil {
			return err
		}
		if pendiente != input.Etapa {
			return &domainaval.StateError{
				Op:      "rechazar",
				Estado:  domainaval.Estado(avalRow.Estado),
				Etapa:   input.Etapa,
				Detalle: "la etapa pendiente de revision es " + string(pendiente),
			}
		}

		if err := domainaval.ValidarActorEtapa(input.Principal, input.Etapa); err != nil {
			return err
		}

		now := nowUTCString()
		if err := s.repo.AppendHistorial(txCtx, ports.EntradaHistorialCreate{
			AvalID:    avalRow.AvalID,
			Etapa:     string(input.Etapa),
			Resultado: string(domainaval.ResultadoRechazado),
			ActorID:   input.Principal.UsuarioID,
			Motivo:    motivo,
			CreadoEn:  now,
		}); err != nil {
			return err
		}

		if err := s.repo.SetEstado(txCtx, avalRow.AvalID, string(domainaval.EstadoRechazado), avalRow.Version, now); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				return &domainaval.ConflictError{AvalID: avalRow.AvalID, Detalle: "el aval cambio durante el rechazo"}
			}
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	// The rejection entry carries its etapa, so the derived stage may
	// move off SOLICITUD here.
	s.setCacheBestEffort(ctx, cacheEtapaKey(input.AvalID), string(input.Etapa))
	return nil
}
