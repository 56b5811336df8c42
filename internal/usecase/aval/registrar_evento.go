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

// RegistrarEvento records a competition event that avales can later be
// requested against.
func (s *Service) RegistrarEvento(ctx context.Context, input RegistrarEventoInput) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return "", errors.New("aval repository is required")
	}

	if strings.TrimSpace(input.Nombre) == "" {
		return "", &domainaval.ValidationError{Campo: "nombre", Detalle: "se requiere el nombre del evento"}
	}
	if strings.TrimSpace(input.FechaInicio) == "" || strings.TrimSpace(input.FechaFin) == "" {
		return "", &domainaval.ValidationError{Campo: "fechas", Detalle: "se requieren fechas de inicio y fin"}
	}
	if input.FechaFin < input.FechaInicio {
		return "", &domainaval.ValidationError{Campo: "fechas", Detalle: "la fecha fin no puede ser anterior al inicio"}
	}
	if input.CuposMasculinos < 0 || input.CuposFemeninos < 0 {
		return "", &domainaval.ValidationError{Campo: "cupos", Detalle: "los cupos no pueden ser negativos"}
	}
	if input.CuposMasculinos+input.CuposFemeninos == 0 {
		return "", &domainaval.ValidationError{Campo: "cupos", Detalle: "el evento requiere al menos un cupo"}
	}

	evento := ports.Evento{
		EventoID:        uuid.NewString(),
		Nombre:          strings.TrimSpace(input.Nombre),
		Lugar:           strings.TrimSpace(input.Lugar),
		FechaInicio:     input.FechaInicio,
		FechaFin:        input.FechaFin,
		CuposMasculinos: input.CuposMasculinos,
		CuposFemeninos:  input.CuposFemeninos,
		Disponible:      input.Disponible,
		CreadoEn:        nowUTCString(),
	}

	created, err := s.repo.CreateEvento(ctx, evento)
	if err != nil {
		return "", err
	}
	return created.EventoID, nil
}

// ListEventos returns registered events, optionally only available ones.
func (s *Service) ListEventos(ctx context.Context, soloDisponibles bool) ([]ports.Evento, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("aval repository is required")
	}

	return s.repo.ListEventos(ctx, soloDisponibles)
}
