package aval

import "strings"

// PuedeActuar reports whether the role set authorizes acting on etapa,
// per the stage registry.
func PuedeActuar(roles []Rol, etapa Etapa) bool {
	spec, ok := SpecDeEtapa(etapa)
	if !ok {
		return false
	}

	for _, autorizado := range spec.Roles {
		if TieneRol(roles, autorizado) {
			return true
		}
	}
	return false
}

// ValidarCreadorBorrador enforces the segregation-of-duties rule for
// draft creation: the actor needs an assigned disciplina and must not
// hold any reviewer role.
func ValidarCreadorBorrador(p Principal) error {
	if strings.TrimSpace(p.UsuarioID) == "" {
		return &ValidationError{Campo: "usuario_id", Detalle: "se requiere el usuario solicitante"}
	}
	if strings.TrimSpace(p.DisciplinaID) == "" {
		return &PermissionError{Detalle: "el solicitante no tiene disciplina asignada"}
	}
	for _, rol := range p.Roles {
		if EsRolRevisor(rol) {
			return &PermissionError{Detalle: "un rol revisor (" + string(rol) + ") no puede crear solicitudes de aval"}
		}
	}
	return nil
}

// ValidarActorEtapa combines the registry lookup and the role check,
// producing the typed errors the operations surface.
func ValidarActorEtapa(p Principal, etapa Etapa) error {
	spec, ok := SpecDeEtapa(etapa)
	if !ok {
		return &ValidationError{Campo: "etapa", Detalle: "etapa desconocida: " + string(etapa)}
	}
	if !PuedeActuar(p.Roles, etapa) {
		return &PermissionError{Etapa: etapa, Roles: spec.Roles}
	}
	return nil
}
