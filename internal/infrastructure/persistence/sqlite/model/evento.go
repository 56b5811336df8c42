package model

type Evento struct {
	EventoID        string `gorm:"column:evento_id;primaryKey;type:text"`
	Nombre          string `gorm:"column:nombre;type:text;not null"`
	Lugar           string `gorm:"column:lugar;type:text;not null"`
	FechaInicio     string `gorm:"column:fecha_inicio;type:text;not null"`
	FechaFin        string `gorm:"column:fecha_fin;type:text;not null"`
	CuposMasculinos int    `gorm:"column:cupos_masculinos;not null;default:0"`
	CuposFemeninos  int    `gorm:"column:cupos_femeninos;not null;default:0"`
	Disponible      bool   `gorm:"column:disponible;not null;default:1"`
	CreadoEn        string `gorm:"column:creado_en;type:text;not null"`
}

func (Evento) TableName() string {
	return "eventos"
}
