package aval

import (
	"encoding/json"
	"strings"
)

// Artefacto is a stage-specific structured payload. Each reviewing stage
// that requires one defines its own type; payloads are stored as JSON and
// parsed back through ParseArtefacto.
type Artefacto interface {
	Etapa() Etapa
	Validar() error
}

type ItemChecklist struct {
	Criterio    string `json:"criterio"`
	Cumple      bool   `json:"cumple"`
	Observacion string `json:"observacion"`
}

// RevisionMetodologica is the methodologist's checklist over the
// technical dossier.
type RevisionMetodologica struct {
	Items []ItemChecklist `json:"items"`
}

func (RevisionMetodologica) Etapa() Etapa { return EtapaRevisionMetodologo }

func (r RevisionMetodologica) Validar() error {
	if len(r.Items) == 0 {
		return &ValidationError{Campo: "items", Detalle: "la revision requiere al menos un criterio evaluado"}
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.Criterio) == "" {
			return &ValidationError{Campo: "items", Detalle: "item de checklist sin criterio"}
		}
	}
	return nil
}

// RevisionDTM is the technical directorate's report.
type RevisionDTM struct {
	Informe       string `json:"informe"`
	Recomendacion string `json:"recomendacion"`
}

func (RevisionDTM) Etapa() Etapa { return EtapaRevisionDTM }

func (r RevisionDTM) Validar() error {
	if strings.TrimSpace(r.Informe) == "" {
		return &ValidationError{Campo: "informe", Detalle: "se requiere el informe de la revision"}
	}
	return nil
}

// CertificadoPDA certifies budget availability against the annual
// acquisitions plan.
type CertificadoPDA struct {
	Partida   string  `json:"partida"`
	Monto     float64 `json:"monto"`
	Certifica bool    `json:"certifica"`
}

func (CertificadoPDA) Etapa() Etapa { return EtapaPDA }

func (c CertificadoPDA) Validar() error {
	if strings.TrimSpace(c.Partida) == "" {
		return &ValidationError{Campo: "partida", Detalle: "se requiere la partida presupuestaria"}
	}
	if c.Monto <= 0 {
		return &ValidationError{Campo: "monto", Detalle: "el monto certificado debe ser positivo"}
	}
	if !c.Certifica {
		return &ValidationError{Campo: "certifica", Detalle: "el certificado debe estar marcado como emitido"}
	}
	return nil
}

// CertificadoComprasPublicas certifies the public-procurement check.
type CertificadoComprasPublicas struct {
	Proceso   string `json:"proceso"`
	Certifica bool   `json:"certifica"`
}

func (CertificadoComprasPublicas) Etapa() Etapa { return EtapaControlPrevio }

func (c CertificadoComprasPublicas) Validar() error {
	if strings.TrimSpace(c.Proceso) == "" {
		return &ValidationError{Campo: "proceso", Detalle: "se requiere la referencia del proceso"}
	}
	if !c.Certifica {
		return &ValidationError{Campo: "certifica", Detalle: "el certificado debe estar marcado como emitido"}
	}
	return nil
}

// ParseArtefacto decodes and validates a stage payload. Unknown etapas
// and etapas that take no artifact are rejected as validation errors.
func ParseArtefacto(etapa Etapa, payload []byte) (Artefacto, error) {
	if len(payload) == 0 {
		return nil, &ValidationError{Campo: "payload", Detalle: "se requiere el contenido del artefacto"}
	}

	var artefacto Artefacto
	switch etapa {
	case EtapaSolicitud:
		var expediente ExpedienteTecnico
		if err := json.Unmarshal(payload, &expediente); err != nil {
			return nil, &ValidationError{Campo: "payload", Detalle: "expediente invalido: " + err.Error()}
		}
		// Headcount validation needs the evento, so the caller runs
		// Validar(cupos) separately.
		return expediente, nil
	case EtapaRevisionMetodologo:
		var revision RevisionMetodologica
		if err := json.Unmarshal(payload, &revision); err != nil {
			return nil, &ValidationError{Campo: "payload", Detalle: "revision metodologica invalida: " + err.Error()}
		}
		artefacto = revision
	case EtapaRevisionDTM:
		var revision RevisionDTM
		if err := json.Unmarshal(payload, &revision); err != nil {
			return nil, &ValidationError{Campo: "payload", Detalle: "revision DTM invalida: " + err.Error()}
		}
		artefacto = revision
	case EtapaPDA:
		var certificado CertificadoPDA
		if err := json.Unmarshal(payload, &certificado); err != nil {
			return nil, &ValidationError{Campo: "payload", Detalle: "certificado PDA invalido: " + err.Error()}
		}
		artefacto = certificado
	case EtapaControlPrevio:
		var certificado CertificadoComprasPublicas
		if err := json.Unmarshal(payload, &certificado); err != nil {
			return nil, &ValidationError{Campo: "payload", Detalle: "certificado de compras publicas invalido: " + err.Error()}
		}
		artefacto = certificado
	default:
		return nil, &ValidationError{Campo: "etapa", Detalle: "la etapa " + string(etapa) + " no admite artefactos"}
	}

	if err := artefacto.Validar(); err != nil {
		return nil, err
	}
	return artefacto, nil
}
