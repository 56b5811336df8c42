package ports

import (
	"context"
	"errors"
)

var (
	ErrAvalNotFound      = errors.New("aval not found")
	ErrEventoNotFound    = errors.New("evento not found")
	ErrArtefactoNotFound = errors.New("artefacto not found")

	// ErrVersionConflict is returned when an optimistic write finds the
	// aval row changed since it was read.
	ErrVersionConflict = errors.New("aval version conflict")
)

// Aval is the persisted endorsement request. Version is the optimistic
// concurrency token, bumped on every mutation.
type Aval struct {
	AvalID        string
	Codigo        string
	EventoID      string
	CreadorID     string
	DisciplinaID  string
	Convocatoria  string
	Estado        string
	Version       uint64
	CreadoEn      string
	ActualizadoEn string
}

type Evento struct {
	EventoID        string
	Nombre          string
	Lugar           string
	FechaInicio     string
	FechaFin        string
	CuposMasculinos int
	CuposFemeninos  int
	Disponible      bool
	CreadoEn        string
}

type EntradaHistorial struct {
	HistorialID uint64
	AvalID      string
	Etapa       string
	Resultado   string
	ActorID     string
	Motivo      string
	CreadoEn    string
}

type EntradaHistorialCreate struct {
	AvalID    string
	Etapa     string
	Resultado string
	ActorID   string
	Motivo    string
	CreadoEn  string
}

type Artefacto struct {
	ArtefactoID   uint64
	AvalID        string
	Etapa         string
	PayloadJSON   string
	CreadoPor     string
	CreadoEn      string
	ActualizadoEn string
}

type ArtefactoUpsert struct {
	AvalID      string
	Etapa       string
	PayloadJSON string
	ActorID     string
	Momento     string
}

type AvalFilter struct {
	Estado    string
	CreadorID string
	EventoID  string
}

type AvalReadRepository interface {
	GetAval(ctx context.Context, avalID string) (Aval, error)
	ListAvales(ctx context.Context, filter AvalFilter) ([]Aval, error)
	GetEvento(ctx context.Context, eventoID string) (Evento, error)
	ListEventos(ctx context.Context, soloDisponibles bool) ([]Evento, error)
	ListHistorial(ctx context.Context, avalID string) ([]EntradaHistorial, error)
	// ListHistorialDeAvales returns the entries of every given aval in
	// one query, each aval's entries in insertion order.
	ListHistorialDeAvales(ctx context.Context, avalIDs []string) ([]EntradaHistorial, error)
	GetArtefacto(ctx context.Context, avalID string, etapa string) (Artefacto, error)
	ListArtefactos(ctx context.Context, avalID string) ([]Artefacto, error)
}

type AvalRepository interface {
	AvalReadRepository
	CreateEvento(ctx context.Context, evento Evento) (Evento, error)
	CreateAval(ctx context.Context, aval Aval) (Aval, error)
	// SetEstado writes the estado and bumps Version; expectedVersion must
	// match the stored row or ErrVersionConflict is returned.
	SetEstado(ctx context.Context, avalID string, estado string, expectedVersion uint64, actualizadoEn string) error
	UpsertArtefacto(ctx context.Context, input ArtefactoUpsert) error
	AppendHistorial(ctx context.Context, input EntradaHistorialCreate) error
}
