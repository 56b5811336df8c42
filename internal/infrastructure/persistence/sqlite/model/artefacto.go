package model

type Artefacto struct {
	ArtefactoID   uint64 `gorm:"column:artefacto_id;primaryKey;autoIncrement"`
	AvalID        string `gorm:"column:aval_id;type:text;not null;uniqueIndex:idx_artefacto_aval_etapa"`
	Etapa         string `gorm:"column:etapa;type:text;not null;uniqueIndex:idx_artefacto_aval_etapa"`
	PayloadJSON   string `gorm:"column:payload_json;type:text;not null"`
	CreadoPor     string `gorm:"column:creado_por;type:text;not null"`
	CreadoEn      string `gorm:"column:creado_en;type:text;not null"`
	ActualizadoEn string `gorm:"column:actualizado_en;type:text;not null"`
}

func (Artefacto) TableName() string {
	return "aval_artefactos"
}
