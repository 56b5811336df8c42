package aval

import (
	"strconv"
	"strings"
)

// Genero of a nominated participant, matched against the evento's cupos.
type Genero string

const (
	GeneroMasculino Genero = "MASCULINO"
	GeneroFemenino  Genero = "FEMENINO"
)

// CuposEvento is the required headcount per gender, read from the evento.
type CuposEvento struct {
	Masculinos int
	Femeninos  int
}

type Participante struct {
	DeportistaID string `json:"deportista_id"`
	Nombre       string `json:"nombre"`
	Genero       Genero `json:"genero"`
}

type Logistica struct {
	Salida     string `json:"salida"`
	Retorno    string `json:"retorno"`
	Transporte string `json:"transporte"`
	Hospedaje  string `json:"hospedaje"`
}

type RubroPresupuesto struct {
	Descripcion string  `json:"descripcion"`
	Monto       float64 `json:"monto"`
}

// ExpedienteTecnico is the structured submission payload attached when an
// aval is submitted: who travels, when, why, and at what cost.
type ExpedienteTecnico struct {
	Participantes []Participante     `json:"participantes"`
	Logistica     Logistica          `json:"logistica"`
	Objetivos     []string           `json:"objetivos"`
	Criterios     []string           `json:"criterios"`
	Presupuesto   []RubroPresupuesto `json:"presupuesto"`
}

func (ExpedienteTecnico) Etapa() Etapa { return EtapaSolicitud }

// Validar checks structural completeness without the evento headcounts
// (used when the evento is not at hand; satisfies Artefacto).
func (e ExpedienteTecnico) Validar() error {
	return e.validar(nil)
}

// ValidarConCupos checks structural completeness plus the evento's
// required headcounts. Returns the first violation as a *ValidationError.
func (e ExpedienteTecnico) ValidarConCupos(cupos CuposEvento) error {
	return e.validar(&cupos)
}

func (e ExpedienteTecnico) validar(cupos *CuposEvento) error {
	if len(e.Participantes) == 0 {
		return &ValidationError{Campo: "participantes", Detalle: "se requiere al menos un deportista"}
	}

	masculinos, femeninos := 0, 0
	vistos := make(map[string]struct{}, len(e.Participantes))
	for _, p := range e.Participantes {
		if strings.TrimSpace(p.DeportistaID) == "" {
			return &ValidationError{Campo: "participantes", Detalle: "participante sin deportista_id"}
		}
		if _, dup := vistos[p.DeportistaID]; dup {
			return &ValidationError{Campo: "participantes", Detalle: "deportista duplicado: " + p.DeportistaID}
		}
		vistos[p.DeportistaID] = struct{}{}

		switch p.Genero {
		case GeneroMasculino:
			masculinos++
		case GeneroFemenino:
			femeninos++
		default:
			return &ValidationError{Campo: "participantes", Detalle: "genero invalido: " + string(p.Genero)}
		}
	}
	if cupos != nil && (masculinos != cupos.Masculinos || femeninos != cupos.Femeninos) {
		return &ValidationError{
			Campo: "participantes",
			Detalle: "la nomina no cumple los cupos del evento: se requieren " +
				strconv.Itoa(cupos.Masculinos) + " masculinos y " + strconv.Itoa(cupos.Femeninos) + " femeninos",
		}
	}

	if strings.TrimSpace(e.Logistica.Salida) == "" || strings.TrimSpace(e.Logistica.Retorno) == "" {
		return &ValidationError{Campo: "logistica", Detalle: "se requieren fechas de salida y retorno"}
	}
	// Dates are RFC 3339 / ISO dates, so lexical order is chronological.
	if e.Logistica.Retorno < e.Logistica.Salida {
		return &ValidationError{Campo: "logistica", Detalle: "el retorno no puede ser anterior a la salida"}
	}

	if err := validarTextosUnicos("objetivos", e.Objetivos); err != nil {
		return err
	}
	if err := validarTextosUnicos("criterios", e.Criterios); err != nil {
		return err
	}

	if len(e.Presupuesto) == 0 {
		return &ValidationError{Campo: "presupuesto", Detalle: "se requiere al menos un rubro"}
	}
	for _, rubro := range e.Presupuesto {
		if strings.TrimSpace(rubro.Descripcion) == "" {
			return &ValidationError{Campo: "presupuesto", Detalle: "rubro sin descripcion"}
		}
		if rubro.Monto <= 0 {
			return &ValidationError{Campo: "presupuesto", Detalle: "rubro con monto no positivo: " + rubro.Descripcion}
		}
	}

	return nil
}

func validarTextosUnicos(campo string, textos []string) error {
	if len(textos) == 0 {
		return &ValidationError{Campo: campo, Detalle: "se requiere al menos un elemento"}
	}

	vistos := make(map[string]struct{}, len(textos))
	for _, texto := range textos {
		limpio := strings.ToLower(strings.TrimSpace(texto))
		if limpio == "" {
			return &ValidationError{Campo: campo, Detalle: "elemento vacio"}
		}
		if _, dup := vistos[limpio]; dup {
			return &ValidationError{Campo: campo, Detalle: "elemento duplicado: " + texto}
		}
		vistos[limpio] = struct{}{}
	}
	return nil
}
