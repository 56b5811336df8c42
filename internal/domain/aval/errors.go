package aval

import (
	"fmt"
	"strings"
)

// ValidationError reports a structural or business-rule violation in
// submitted data. Recoverable by correcting the input; raised before any
// write happens.
type ValidationError struct {
	Campo   string
	Detalle string
}

func (e *ValidationError) Error() string {
	if e.Campo == "" {
		return "validacion: " + e.Detalle
	}
	return fmt.Sprintf("validacion: campo %s: %s", e.Campo, e.Detalle)
}

// StateError reports an operation requested against an aval that is not in
// the required estado or etapa. Signals a stale client view.
type StateError struct {
	Op      string
	Estado  Estado
	Etapa   Etapa
	Detalle string
}

func (e *StateError) Error() string {
	parts := make([]string, 0, 3)
	parts = append(parts, "estado invalido para "+e.Op)
	if e.Estado != "" {
		parts = append(parts, "estado="+string(e.Estado))
	}
	if e.Etapa != "" {
		parts = append(parts, "etapa="+string(e.Etapa))
	}
	if e.Detalle != "" {
		parts = append(parts, e.Detalle)
	}
	return strings.Join(parts, ": ")
}

// PermissionError reports that the acting principal's roles do not
// authorize the requested action. Never retried.
type PermissionError struct {
	Etapa   Etapa
	Roles   []Rol
	Detalle string
}

func (e *PermissionError) Error() string {
	if e.Detalle != "" {
		return "permiso denegado: " + e.Detalle
	}
	required := make([]string, 0, len(e.Roles))
	for _, rol := range e.Roles {
		required = append(required, string(rol))
	}
	return fmt.Sprintf("permiso denegado: etapa %s requiere rol %s", e.Etapa, strings.Join(required, "|"))
}

// ConflictError reports a concurrent modification detected at write time
// (the aval row moved since it was read). The caller should refetch and
// decide whether the action still applies.
type ConflictError struct {
	AvalID  string
	Detalle string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia en aval %s: %s", e.AvalID, e.Detalle)
}
