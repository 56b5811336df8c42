package model

// Historial rows are append-only; historial_id is the authoritative
// order, not creado_en.
type Historial struct {
	HistorialID uint64 `gorm:"column:historial_id;primaryKey;autoIncrement"`
	AvalID      string `gorm:"column:aval_id;type:text;not null;index"`
	Etapa       string `gorm:"column:etapa;type:text"`
	Resultado   string `gorm:"column:resultado;type:text;not null"`
	ActorID     string `gorm:"column:actor_id;type:text;not null"`
	Motivo      string `gorm:"column:motivo;type:text"`
	CreadoEn    string `gorm:"column:creado_en;type:text;not null;index"`
}

func (Historial) TableName() string {
	return "aval_historial"
}
