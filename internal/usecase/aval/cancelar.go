package aval

import (
	"context"
	"errors"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// Cancelar withdraws the aval. Only the original creator or an admin may
// cancel, from BORRADOR or SOLICITADO, at any etapa. The terminal estado
// is CANCELADO and the history entry carries no etapa, so the record
// never reads as a reviewer rejection.
func (s *Service) Cancelar(ctx context.Context, input CancelarInput) error {
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

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		avalRow, err := s.repo.GetAval(txCtx, input.AvalID)
		if err != nil {
			return err
		}

		estado := domainaval.Estado(avalRow.Estado)
		if estado != domainaval.EstadoBorrador && estado != domainaval.EstadoSolicitado {
			return &domainaval.StateError{
				Op:      "cancelar",
				Estado:  estado,
				Detalle: "solo un aval en borrador o en revision puede cancelarse",
			}
		}

		esAdmin := domainaval.TieneRol(input.Principal.Roles, domainaval.RolAdmin) ||
			domainaval.TieneRol(input.Principal.Roles, domainaval.RolSuperAdmin)
		if avalRow.CreadorID != input.Principal.UsuarioID && !esAdmin {
			return &domainaval.PermissionError{Detalle: "solo el creador o un administrador puede cancelar el aval"}
		}

		now := nowUTCString()
		if err := s.repo.AppendHistorial(txCtx, ports.EntradaHistorialCreate{
			AvalID:    avalRow.AvalID,
			Resultado: string(domainaval.ResultadoCancelado),
			ActorID:   input.Principal.UsuarioID,
			CreadoEn:  now,
		}); err != nil {
			return err
		}

		if err := s.repo.SetEstado(txCtx, avalRow.AvalID, string(domainaval.EstadoCancelado), avalRow.Version, now); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				return &domainaval.ConflictError{AvalID: avalRow.AvalID, Detalle: "el aval cambio durante la cancelacion"}
			}
			return err
		}
		return nil
	}); err != nil {
		return err
	}
	// The cancellation entry carries no etapa, so the derived stage and
	// its cached hint stay where the aval stopped.
	return nil
}
