package model

type Aval struct {
	AvalID        string `gorm:"column:aval_id;primaryKey;type:text"`
	Codigo        string `gorm:"column:codigo;type:text;not null;uniqueIndex"`
	EventoID      string `gorm:"column:evento_id;type:text;not null;index"`
	CreadorID     string `gorm:"column:creador_id;type:text;not null;index"`
	DisciplinaID  string `gorm:"column:disciplina_id;type:text;not null"`
	Convocatoria  string `gorm:"column:convocatoria;type:text;not null"`
	Estado        string `gorm:"column:estado;type:text;not null;index"`
	Version       uint64 `gorm:"column:version;not null;default:1"`
	CreadoEn      string `gorm:"column:creado_en;type:text;not null"`
	ActualizadoEn string `gorm:"column:actualizado_en;type:text;not null"`
}

func (Aval) TableName() string {
	return "avales"
}
