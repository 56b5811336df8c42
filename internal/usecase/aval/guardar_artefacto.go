package aval

import (
	"context"
	"encoding/json"
	"errors"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// GuardarArtefacto records or edits the stage artifact for the etapa
// whose review the aval is waiting on. Once the aval moves past an etapa
// its artifact is frozen; attempts to write it again are state errors.
func (s *Service) GuardarArtefacto(ctx context.Context, input GuardarArtefactoInput) error {
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

	if input.Etapa == domainaval.EtapaSolicitud {
		return &domainaval.ValidationError{Campo: "etapa", Detalle: "el expediente de solicitud se guarda mediante enviar"}
	}

	artefacto, err := domainaval.ParseArtefacto(input.Etapa, input.Payload)
	if err != nil {
		return err
	}
	if err := domainaval.ValidarActorEtapa(input.Principal, input.Etapa); err != nil {
		return err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		avalRow, err := s.repo.GetAval(txCtx, input.AvalID)
		if err != nil {
			return err
		}
		if avalRow.Estado != string(domainaval.EstadoSolicitado) {
			return &domainaval.StateError{
				Op:      "guardar artefacto",
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
				Op:      "guardar artefacto",
				Estado:  domainaval.Estado(avalRow.Estado),
				Etapa:   input.Etapa,
				Detalle: "la etapa pendiente de revision es " + string(pendiente),
			}
		}

		payload, err := json.Marshal(artefacto)
		if err != nil {
			return errs.Wrap(err, "marshal artefacto")
		}

		now := nowUTCString()
		if err := s.repo.UpsertArtefacto(txCtx, ports.ArtefactoUpsert{
			AvalID:      avalRow.AvalID,
			Etapa:       string(input.Etapa),
			PayloadJSON: string(payload),
			ActorID:     input.Principal.UsuarioID,
			Momento:     now,
		}); err != nil {
			return err
		}

		// Bump the version so racing approvals over the same stage see
		// the artifact write.
		if err := s.repo.SetEstado(txCtx, avalRow.AvalID, avalRow.Estado, avalRow.Version, now); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				return &domainaval.ConflictError{AvalID: avalRow.AvalID, Detalle: "el aval cambio mientras se guardaba el artefacto"}
			}
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	return nil
}
