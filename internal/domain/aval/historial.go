package aval

// Resultado marks the outcome recorded by a history entry.
type Resultado string

const (
	ResultadoAprobado  Resultado = "APROBADO"
	ResultadoRechazado Resultado = "RECHAZADO"
	ResultadoCancelado Resultado = "CANCELADO"
)

// EntradaHistorial is one immutable audit record. Seq is the store's
// insertion number; it, not CreadoEn, is the authoritative order.
//
// An approval entry stores the etapa the aval moved TO (where it now
// sits), so the current stage is a pure function of the latest entry. A
// rejection entry stores the etapa that rejected. A cancellation entry
// carries no etapa at all: it must not read as a reviewer action.
type EntradaHistorial struct {
	Seq       uint64
	Etapa     Etapa
	Resultado Resultado
	ActorID   string
	Motivo    string
	CreadoEn  string
}

// EtapaActual derives the current stage from history, which the caller
// supplies in insertion order. Entries without a stage (cancellations)
// are skipped; with no stage-bearing history the aval sits at SOLICITUD.
func EtapaActual(historial []EntradaHistorial) Etapa {
	for i := len(historial) - 1; i >= 0; i-- {
		if historial[i].Etapa != "" {
			return historial[i].Etapa
		}
	}
	return EtapaSolicitud
}

// EtapaPendiente derives the stage whose review is awaited. SOLICITUD
// is the submission stage, not a review: while the aval still sits
// there, the pending review is REVISION_METODOLOGO. Every later entry
// already stores the stage the aval moved to, so pending and current
// coincide from then on.
func EtapaPendiente(historial []EntradaHistorial) Etapa {
	actual := EtapaActual(historial)
	if actual == EtapaSolicitud {
		return EtapaRevisionMetodologo
	}
	return actual
}

// EsProgresionMonotona reports whether the stage ordinals across history
// never decrease. Holds for any history produced by the operations here;
// exposed for audits over stored data.
func EsProgresionMonotona(historial []EntradaHistorial) bool {
	previo := 0
	for _, entrada := range historial {
		if entrada.Etapa == "" {
			continue
		}
		ordinal, ok := OrdinalDeEtapa(entrada.Etapa)
		if !ok {
			return false
		}
		if ordinal < previo {
			return false
		}
		previo = ordinal
	}
	return true
}
