package aval

import (
	"context"
	"errors"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// Aprobar approves the etapa whose review the aval is waiting on. Right
// after enviar that is REVISION_METODOLOGO; SOLICITUD itself is the
// submission, never a review, so it cannot be approved. The appended
// history entry stores the NEXT etapa (where the aval now sits), which is
// what keeps the derived current stage a pure function of the latest
// entry. Approving the last etapa turns the aval ACEPTADO.
func (s *Service) Aprobar(ctx context.Context, input AprobarInput) error {
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

	spec, ok := domainaval.SpecDeEtapa(input.Etapa)
	if !ok {
		return &domainaval.ValidationError{Campo: "etapa", Detalle: "etapa desconocida: " + string(input.Etapa)}
	}

	var etapaFinal domainaval.Etapa

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		avalRow, err := s.repo.GetAval(txCtx, input.AvalID)
		if err != nil {
			return err
		}
		if avalRow.Estado != string(domainaval.EstadoSolicitado) {
			return &domainaval.StateError{
				Op:      "aprobar",
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
				Op:      "aprobar",
				Estado:  domainaval.Estado(avalRow.Estado),
				Etapa:   input.Etapa,
				Detalle: "la etapa pendiente de revision es " + string(pendiente),
			}
		}

		if err := domainaval.ValidarActorEtapa(input.Principal, input.Etapa); err != nil {
			return err
		}

		if spec.RequiereArtefacto {
			if _, err := s.repo.GetArtefacto(txCtx, avalRow.AvalID, string(input.Etapa)); err != nil {
				if errors.Is(err, ports.ErrArtefactoNotFound) {
					return &domainaval.StateError{
						Op:      "aprobar",
						Estado:  domainaval.Estado(avalRow.Estado),
						Etapa:   input.Etapa,
						Detalle: "la etapa requiere su artefacto antes de aprobar",
					}
				}
				return err
			}
		}

		now := nowUTCString()
		siguiente, haySiguiente := domainaval.SiguienteEtapa(input.Etapa)

		etapaEntrada := input.Etapa
		if haySiguiente {
			etapaEntrada = siguiente
		}
		if err := s.repo.AppendHistorial(txCtx, ports.EntradaHistorialCreate{
			AvalID:    avalRow.AvalID,
			Etapa:     string(etapaEntrada),
			Resultado: string(domainaval.ResultadoAprobado),
			ActorID:   input.Principal.UsuarioID,
			CreadoEn:  now,
		}); err != nil {
			return err
		}

		estadoFinal := domainaval.EstadoSolicitado
		if !haySiguiente {
			estadoFinal = domainaval.EstadoAceptado
		}
		etapaFinal = etapaEntrada

		if err := s.repo.SetEstado(txCtx, avalRow.AvalID, string(estadoFinal), avalRow.Version, now); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				return &domainaval.ConflictError{AvalID: avalRow.AvalID, Detalle: "el aval cambio durante la aprobacion"}
			}
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheEtapaKey(input.AvalID), string(etapaFinal))
	return nil
}
