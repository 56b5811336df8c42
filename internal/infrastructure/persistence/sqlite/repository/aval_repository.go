package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"avales/internal/errs"
	"avales/internal/infrastructure/persistence/sqlite/model"
	"avales/internal/ports"
)

type AvalRepository struct {
	db *gorm.DB
}

var _ ports.AvalRepository = (*AvalRepository)(nil)

func NewAvalRepository(db *gorm.DB) *AvalRepository {
	return &AvalRepository{db: db}
}

func (r *AvalRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *AvalRepository) GetAval(ctx context.Context, avalID string) (ports.Aval, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Aval{}, err
	}

	var row model.Aval
	if err := db.Where("aval_id = ?", avalID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Aval{}, ports.ErrAvalNotFound
		}
		return ports.Aval{}, errs.Wrap(err, "query aval")
	}
	return mapAval(row), nil
}

func (r *AvalRepository) ListAvales(ctx context.Context, filter ports.AvalFilter) ([]ports.Aval, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Aval{})
	if estado := strings.TrimSpace(filter.Estado); estado != "" {
		query = query.Where("estado = ?", estado)
	}
	if creador := strings.TrimSpace(filter.CreadorID); creador != "" {
		query = query.Where("creador_id = ?", creador)
	}
	if evento := strings.TrimSpace(filter.EventoID); evento != "" {
		query = query.Where("evento_id = ?", evento)
	}

	var rows []model.Aval
	if err := query.Order("creado_en asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query avales")
	}

	items := make([]ports.Aval, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAval(row))
	}
	return items, nil
}

func (r *AvalRepository) GetEvento(ctx context.Context, eventoID string) (ports.Evento, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Evento{}, err
	}

	var row model.Evento
	if err := db.Where("evento_id = ?", eventoID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Evento{}, ports.ErrEventoNotFound
		}
		return ports.Evento{}, errs.Wrap(err, "query evento")
	}
	return mapEvento(row), nil
}

func (r *AvalRepository) ListEventos(ctx context.Context, soloDisponibles bool) ([]ports.Evento, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Evento{})
	if soloDisponibles {
		query = query.Where("disponible = ?", true)
	}

	var rows []model.Evento
	if err := query.Order("fecha_inicio asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query eventos")
	}

	items := make([]ports.Evento, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEvento(row))
	}
	return items, nil
}

func (r *AvalRepository) ListHistorial(ctx context.Context, avalID string) ([]ports.EntradaHistorial, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Historial
	if err := db.
		Where("aval_id = ?", avalID).
		Order("historial_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query historial")
	}

	items := make([]ports.EntradaHistorial, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.EntradaHistorial{
			HistorialID: row.HistorialID,
			AvalID:      row.AvalID,
			Etapa:       row.Etapa,
			Resultado:   row.Resultado,
			ActorID:     row.ActorID,
			Motivo:      row.Motivo,
			CreadoEn:    row.CreadoEn,
		})
	}
	return items, nil
}

func (r *AvalRepository) ListHistorialDeAvales(ctx context.Context, avalIDs []string) ([]ports.EntradaHistorial, error) {
	if len(avalIDs) == 0 {
		return nil, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// historial_id is a single global sequence, so one ordering keeps
	// every aval's entries in insertion order.
	var rows []model.Historial
	if err := db.
		Where("aval_id IN ?", avalIDs).
		Order("historial_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query historial por avales")
	}

	items := make([]ports.EntradaHistorial, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.EntradaHistorial{
			HistorialID: row.HistorialID,
			AvalID:      row.AvalID,
			Etapa:       row.Etapa,
			Resultado:   row.Resultado,
			ActorID:     row.ActorID,
			Motivo:      row.Motivo,
			CreadoEn:    row.CreadoEn,
		})
	}
	return items, nil
}

func (r *AvalRepository) GetArtefacto(ctx context.Context, avalID string, etapa string) (ports.Artefacto, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Artefacto{}, err
	}

	var row model.Artefacto
	if err := db.Where("aval_id = ? AND etapa = ?", avalID, etapa).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Artefacto{}, ports.ErrArtefactoNotFound
		}
		return ports.Artefacto{}, errs.Wrap(err, "query artefacto")
	}
	return mapArtefacto(row), nil
}

func (r *AvalRepository) ListArtefactos(ctx context.Context, avalID string) ([]ports.Artefacto, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Artefacto
	if err := db.
		Where("aval_id = ?", avalID).
		Order("artefacto_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query artefactos")
	}

	items := make([]ports.Artefacto, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapArtefacto(row))
	}
	return items, nil
}

func (r *AvalRepository) CreateEvento(ctx context.Context, evento ports.Evento) (ports.Evento, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Evento{}, err
	}

	row := model.Evento{
		EventoID:        evento.EventoID,
		Nombre:          evento.Nombre,
		Lugar:           evento.Lugar,
		FechaInicio:     evento.FechaInicio,
		FechaFin:        evento.FechaFin,
		CuposMasculinos: evento.CuposMasculinos,
		CuposFemeninos:  evento.CuposFemeninos,
		Disponible:      evento.Disponible,
		CreadoEn:        evento.CreadoEn,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Evento{}, errs.Wrap(err, "insert evento")
	}
	return mapEvento(row), nil
}

func (r *AvalRepository) CreateAval(ctx context.Context, aval ports.Aval) (ports.Aval, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Aval{}, err
	}

	row := model.Aval{
		AvalID:        aval.AvalID,
		Codigo:        aval.Codigo,
		EventoID:      aval.EventoID,
		CreadorID:     aval.CreadorID,
		DisciplinaID:  aval.DisciplinaID,
		Convocatoria:  aval.Convocatoria,
		Estado:        aval.Estado,
		Version:       aval.Version,
		CreadoEn:      aval.CreadoEn,
		ActualizadoEn: aval.ActualizadoEn,
	}
	if row.Version == 0 {
		row.Version = 1
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Aval{}, errs.Wrap(err, "insert aval")
	}
	return mapAval(row), nil
}

// SetEstado is the optimistic write: it only lands when the stored
// version still matches expectedVersion, and bumps the version with it.
func (r *AvalRepository) SetEstado(ctx context.Context, avalID string, estado string, expectedVersion uint64, actualizadoEn string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Aval{}).
		Where("aval_id = ? AND version = ?", avalID, expectedVersion).
		Updates(map[string]any{
			"estado":         estado,
			"version":        gorm.Expr("version + 1"),
			"actualizado_en": actualizadoEn,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update aval estado")
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Aval{}).Where("aval_id = ?", avalID).Count(&count).Error; err != nil {
			return errs.Wrap(err, "check aval existence")
		}
		if count == 0 {
			return ports.ErrAvalNotFound
		}
		return ports.ErrVersionConflict
	}
	return nil
}

func (r *AvalRepository) UpsertArtefacto(ctx context.Context, input ports.ArtefactoUpsert) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Artefacto{
		AvalID:        input.AvalID,
		Etapa:         input.Etapa,
		PayloadJSON:   input.PayloadJSON,
		CreadoPor:     input.ActorID,
		CreadoEn:      input.Momento,
		ActualizadoEn: input.Momento,
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "aval_id"}, {Name: "etapa"}},
		DoUpdates: clause.Assignments(map[string]any{
			"payload_json":   input.PayloadJSON,
			"actualizado_en": input.Momento,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert artefacto")
	}
	return nil
}

func (r *AvalRepository) AppendHistorial(ctx context.Context, input ports.EntradaHistorialCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Historial{
		AvalID:    input.AvalID,
		Etapa:     input.Etapa,
		Resultado: input.Resultado,
		ActorID:   input.ActorID,
		Motivo:    input.Motivo,
		CreadoEn:  input.CreadoEn,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert historial")
	}
	return nil
}

func mapAval(row model.Aval) ports.Aval {
	return ports.Aval{
		AvalID:        row.AvalID,
		Codigo:        row.Codigo,
		EventoID:      row.EventoID,
		CreadorID:     row.CreadorID,
		DisciplinaID:  row.DisciplinaID,
		Convocatoria:  row.Convocatoria,
		Estado:        row.Estado,
		Version:       row.Version,
		CreadoEn:      row.CreadoEn,
		ActualizadoEn: row.ActualizadoEn,
	}
}

func mapEvento(row model.Evento) ports.Evento {
	return ports.Evento{
		EventoID:        row.EventoID,
		Nombre:          row.Nombre,
		Lugar:           row.Lugar,
		FechaInicio:     row.FechaInicio,
		FechaFin:        row.FechaFin,
		CuposMasculinos: row.CuposMasculinos,
		CuposFemeninos:  row.CuposFemeninos,
		Disponible:      row.Disponible,
		CreadoEn:        row.CreadoEn,
	}
}

func mapArtefacto(row model.Artefacto) ports.Artefacto {
	return ports.Artefacto{
		ArtefactoID:   row.ArtefactoID,
		AvalID:        row.AvalID,
		Etapa:         row.Etapa,
		PayloadJSON:   row.PayloadJSON,
		CreadoPor:     row.CreadoPor,
		CreadoEn:      row.CreadoEn,
		ActualizadoEn: row.ActualizadoEn,
	}
}
