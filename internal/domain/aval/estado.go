package aval

// Estado is the lifecycle status of an aval.
type Estado string

const (
	// EstadoBorrador is the pre-submission draft: no artifacts, no history.
	EstadoBorrador Estado = "BORRADOR"
	// EstadoSolicitado means the aval is in review, moving etapa by etapa.
	EstadoSolicitado Estado = "SOLICITADO"
	// EstadoAceptado is terminal: every etapa approved.
	EstadoAceptado Estado = "ACEPTADO"
	// EstadoRechazado is terminal: some reviewer rejected the aval.
	EstadoRechazado Estado = "RECHAZADO"
	// EstadoCancelado is terminal: withdrawn by the creator or an admin.
	// Distinct from RECHAZADO so the audit trail never implies a reviewer
	// rejection that did not happen.
	EstadoCancelado Estado = "CANCELADO"
)

func EsEstadoTerminal(estado Estado) bool {
	switch estado {
	case EstadoAceptado, EstadoRechazado, EstadoCancelado:
		return true
	default:
		return false
	}
}

func EsEstadoValido(estado Estado) bool {
	switch estado {
	case EstadoBorrador, EstadoSolicitado, EstadoAceptado, EstadoRechazado, EstadoCancelado:
		return true
	default:
		return false
	}
}
