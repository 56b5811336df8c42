package aval

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"avales/internal/bootstrap/logging"
	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// Service is the single authority for aval state transitions. Every
// mutation runs inside the unit of work and re-reads the aval row and
// history tail before validating, so a stale caller surfaces as a typed
// error instead of corrupting the workflow.
type Service struct {
	repo  ports.AvalRepository
	uow   ports.UnitOfWork
	cache ports.Cache
}

func NewService(repo ports.AvalRepository, uow ports.UnitOfWork, cache ports.Cache) *Service {
	return &Service{
		repo:  repo,
		uow:   uow,
		cache: cache,
	}
}

type RegistrarEventoInput struct {
	Nombre          string
	Lugar           string
	FechaInicio     string
	FechaFin        string
	CuposMasculinos int
	CuposFemeninos  int
	Disponible      bool
}

type CrearBorradorInput struct {
	EventoID     string
	Convocatoria string
	Principal    domainaval.Principal
}

type EnviarInput struct {
	AvalID     string
	Principal  domainaval.Principal
	Expediente domainaval.ExpedienteTecnico
}

type GuardarArtefactoInput struct {
	AvalID    string
	Etapa     domainaval.Etapa
	Principal domainaval.Principal
	Payload   json.RawMessage
}

type AprobarInput struct {
	AvalID    string
	Etapa     domainaval.Etapa
	Principal domainaval.Principal
}

type RechazarInput struct {
	AvalID    string
	Etapa     domainaval.Etapa
	Principal domainaval.Principal
	Motivo    string
}

type CancelarInput struct {
	AvalID    string
	Principal domainaval.Principal
}

type EntradaHistorialItem struct {
	Seq       uint64
	Etapa     string
	Resultado string
	ActorID   string
	Motivo    string
	CreadoEn  string
}

type ArtefactoItem struct {
	Etapa         string
	PayloadJSON   string
	CreadoPor     string
	ActualizadoEn string
}

type AvalDetalle struct {
	AvalID        string
	Codigo        string
	EventoID      string
	CreadorID     string
	DisciplinaID  string
	Convocatoria  string
	Estado        string
	EtapaActual   string
	Version       uint64
	CreadoEn      string
	ActualizadoEn string
	Historial     []EntradaHistorialItem
	Artefactos    []ArtefactoItem
}

type AvalListItem struct {
	AvalID      string
	Codigo      string
	EventoID    string
	CreadorID   string
	Estado      string
	EtapaActual string
	CreadoEn    string
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func cacheEtapaKey(avalID string) string {
	return "aval_etapa:" + avalID
}

// setCacheBestEffort keeps the derived-etapa hint warm without ever
// letting cache failures affect the transition outcome.
func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		logging.Warn(ctx, "cache set failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}

// getCacheBestEffort returns the cached hint, or "" on a miss or a cache
// failure so the caller falls back to the store.
func (s *Service) getCacheBestEffort(ctx context.Context, key string) string {
	if s.cache == nil {
		return ""
	}
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "cache get failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		return ""
	}
	if !found {
		return ""
	}
	return value
}

// historialDominio converts stored rows into domain entries in insertion
// order, ready for EtapaActual.
func historialDominio(rows []ports.EntradaHistorial) []domainaval.EntradaHistorial {
	out := make([]domainaval.EntradaHistorial, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainaval.EntradaHistorial{
			Seq:       row.HistorialID,
			Etapa:     domainaval.Etapa(row.Etapa),
			Resultado: domainaval.Resultado(row.Resultado),
			ActorID:   row.ActorID,
			Motivo:    row.Motivo,
			CreadoEn:  row.CreadoEn,
		})
	}
	return out
}

// etapaPendienteDe reloads the history tail and derives the stage whose
// review is awaited.
func (s *Service) etapaPendienteDe(ctx context.Context, avalID string) (domainaval.Etapa, error) {
	historial, err := s.repo.ListHistorial(ctx, avalID)
	if err != nil {
		return "", err
	}
	return domainaval.EtapaPendiente(historialDominio(historial)), nil
}
