package aval

import (
	"context"
	"errors"
	"fmt"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// GetAval returns the aval with its derived etapa, full historial and
// stored artifacts.
func (s *Service) GetAval(ctx context.Context, avalID string) (AvalDetalle, error) {
	if ctx == nil {
		return AvalDetalle{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return AvalDetalle{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return AvalDetalle{}, errors.New("aval repository is required")
	}

	avalRow, err := s.repo.GetAval(ctx, avalID)
	if err != nil {
		if errors.Is(err, ports.ErrAvalNotFound) {
			return AvalDetalle{}, fmt.Errorf("aval %s no encontrado: %w", avalID, err)
		}
		return AvalDetalle{}, err
	}

	historial, err := s.repo.ListHistorial(ctx, avalID)
	if err != nil {
		return AvalDetalle{}, err
	}
	artefactos, err := s.repo.ListArtefactos(ctx, avalID)
	if err != nil {
		return AvalDetalle{}, err
	}

	entradas := make([]EntradaHistorialItem, 0, len(historial))
	for _, row := range historial {
		entradas = append(entradas, EntradaHistorialItem{
			Seq:       row.HistorialID,
			Etapa:     row.Etapa,
			Resultado: row.Resultado,
			ActorID:   row.ActorID,
			Motivo:    row.Motivo,
			CreadoEn:  row.CreadoEn,
		})
	}

	items := make([]ArtefactoItem, 0, len(artefactos))
	for _, row := range artefactos {
		items = append(items, ArtefactoItem{
			Etapa:         row.Etapa,
			PayloadJSON:   row.PayloadJSON,
			CreadoPor:     row.CreadoPor,
			ActualizadoEn: row.ActualizadoEn,
		})
	}

	return AvalDetalle{
		AvalID:        avalRow.AvalID,
		Codigo:        avalRow.Codigo,
		EventoID:      avalRow.EventoID,
		CreadorID:     avalRow.CreadorID,
		DisciplinaID:  avalRow.DisciplinaID,
		Convocatoria:  avalRow.Convocatoria,
		Estado:        avalRow.Estado,
		EtapaActual:   string(domainaval.EtapaActual(historialDominio(historial))),
		Version:       avalRow.Version,
		CreadoEn:      avalRow.CreadoEn,
		ActualizadoEn: avalRow.ActualizadoEn,
		Historial:     entradas,
		Artefactos:    items,
	}, nil
}

// ListAvales returns summaries with the derived etapa per aval. The
// cached etapa hint answers for avales whose last transition already
// wrote it; the rest are derived from one batched historial query and
// the hint is rewarmed.
func (s *Service) ListAvales(ctx context.Context, filter ports.AvalFilter) ([]AvalListItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("aval repository is required")
	}

	avales, err := s.repo.ListAvales(ctx, filter)
	if err != nil {
		return nil, err
	}

	etapas := make(map[string]domainaval.Etapa, len(avales))
	sinHint := make([]string, 0, len(avales))
	for _, row := range avales {
		hint := domainaval.Etapa(s.getCacheBestEffort(ctx, cacheEtapaKey(row.AvalID)))
		if domainaval.EsEtapaValida(hint) {
			etapas[row.AvalID] = hint
			continue
		}
		sinHint = append(sinHint, row.AvalID)
	}

	if len(sinHint) > 0 {
		entradas, err := s.repo.ListHistorialDeAvales(ctx, sinHint)
		if err != nil {
			return nil, err
		}
		porAval := make(map[string][]ports.EntradaHistorial, len(sinHint))
		for _, entrada := range entradas {
			porAval[entrada.AvalID] = append(porAval[entrada.AvalID], entrada)
		}
		for _, avalID := range sinHint {
			etapa := domainaval.EtapaActual(historialDominio(porAval[avalID]))
			etapas[avalID] = etapa
			s.setCacheBestEffort(ctx, cacheEtapaKey(avalID), string(etapa))
		}
	}

	items := make([]AvalListItem, 0, len(avales))
	for _, row := range avales {
		items = append(items, AvalListItem{
			AvalID:      row.AvalID,
			Codigo:      row.Codigo,
			EventoID:    row.EventoID,
			CreadorID:   row.CreadorID,
			Estado:      row.Estado,
			EtapaActual: string(etapas[row.AvalID]),
			CreadoEn:    row.CreadoEn,
		})
	}
	return items, nil
}
