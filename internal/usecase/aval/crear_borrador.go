package aval

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// CrearBorrador opens a draft aval against an available evento. Reviewer
// roles are refused as submitters; the draft has no artifacts and no
// history until enviado.
func (s *Service) CrearBorrador(ctx context.Context, input CrearBorradorInput) (AvalDetalle, error) {
	if ctx == nil {
		return AvalDetalle{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return AvalDetalle{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return AvalDetalle{}, errors.New("aval repository is required")
	}
	if s.uow == nil {
		return AvalDetalle{}, errors.New("aval unit of work is required")
	}

	if err := domainaval.ValidarCreadorBorrador(input.Principal); err != nil {
		return AvalDetalle{}, err
	}
	if strings.TrimSpace(input.Convocatoria) == "" {
		return AvalDetalle{}, &domainaval.ValidationError{Campo: "convocatoria", Detalle: "se requiere el documento de convocatoria"}
	}

	now := nowUTCString()
	avalID := uuid.NewString()
	codigo := "AV-" + strings.ToUpper(avalID[:8])

	var created ports.Aval
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		evento, err := s.repo.GetEvento(txCtx, input.EventoID)
		if err != nil {
			return err
		}
		if !evento.Disponible {
			return &domainaval.StateError{
				Op:      "crear borrador",
				Detalle: "el evento " + evento.EventoID + " no esta disponible",
			}
		}

		created, err = s.repo.CreateAval(txCtx, ports.Aval{
			AvalID:        avalID,
			Codigo:        codigo,
			EventoID:      evento.EventoID,
			CreadorID:     input.Principal.UsuarioID,
			DisciplinaID:  input.Principal.DisciplinaID,
			Convocatoria:  strings.TrimSpace(input.Convocatoria),
			Estado:        string(domainaval.EstadoBorrador),
			Version:       1,
			CreadoEn:      now,
			ActualizadoEn: now,
		})
		return err
	}); err != nil {
		return AvalDetalle{}, err
	}

	s.setCacheBestEffort(ctx, cacheEtapaKey(avalID), string(domainaval.EtapaSolicitud))

	return AvalDetalle{
		AvalID:        created.AvalID,
		Codigo:        created.Codigo,
		EventoID:      created.EventoID,
		CreadorID:     created.CreadorID,
		DisciplinaID:  created.DisciplinaID,
		Convocatoria:  created.Convocatoria,
		Estado:        created.Estado,
		EtapaActual:   string(domainaval.EtapaSolicitud),
		Version:       created.Version,
		CreadoEn:      created.CreadoEn,
		ActualizadoEn: created.ActualizadoEn,
	}, nil
}
