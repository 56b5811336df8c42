package aval

import (
	"context"
	"encoding/json"
	"errors"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// Enviar submits a draft: validates the expediente against the evento's
// cupos, persists it as the SOLICITUD artifact and moves the aval to
// SOLICITADO. No history entry is appended; SOLICITUD is the implicit
// starting stage inferred by the absence of history.
func (s *Service) Enviar(ctx context.Context, input EnviarInput) error {
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
		if avalRow.Estado != string(domainaval.EstadoBorrador) {
			return &domainaval.StateError{
				Op:      "enviar",
				Estado:  domainaval.Estado(avalRow.Estado),
				Detalle: "solo un borrador puede enviarse",
			}
		}
		if avalRow.CreadorID != input.Principal.UsuarioID {
			return &domainaval.PermissionError{Detalle: "solo el creador puede enviar el aval"}
		}

		evento, err := s.repo.GetEvento(txCtx, avalRow.EventoID)
		if err != nil {
			return err
		}
		if err := input.Expediente.ValidarConCupos(domainaval.CuposEvento{
			Masculinos: evento.CuposMasculinos,
			Femeninos:  evento.CuposFemeninos,
		}); err != nil {
			return err
		}

		payload, err := json.Marshal(input.Expediente)
		if err != nil {
			return errs.Wrap(err, "marshal expediente")
		}

		now := nowUTCString()
		if err := s.repo.UpsertArtefacto(txCtx, ports.ArtefactoUpsert{
			AvalID:      avalRow.AvalID,
			Etapa:       string(domainaval.EtapaSolicitud),
			PayloadJSON: string(payload),
			ActorID:     input.Principal.UsuarioID,
			Momento:     now,
		}); err != nil {
			return err
		}

		if err := s.repo.SetEstado(txCtx, avalRow.AvalID, string(domainaval.EstadoSolicitado), avalRow.Version, now); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				return &domainaval.ConflictError{AvalID: avalRow.AvalID, Detalle: "el aval cambio durante el envio"}
			}
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheEtapaKey(input.AvalID), string(domainaval.EtapaSolicitud))
	return nil
}
