package aval

// Rol is a role supplied by the identity provider. The state machine never
// authenticates; it only authorizes against this value.
type Rol string

const (
	RolSuperAdmin      Rol = "SUPER_ADMIN"
	RolAdmin           Rol = "ADMIN"
	RolSecretaria      Rol = "SECRETARIA"
	RolDTM             Rol = "DTM"
	RolMetodologo      Rol = "METODOLOGO"
	RolEntrenador      Rol = "ENTRENADOR"
	RolUsuario         Rol = "USUARIO"
	RolDeportista      Rol = "DEPORTISTA"
	RolPDA             Rol = "PDA"
	RolComprasPublicas Rol = "COMPRAS_PUBLICAS"
	RolFinanciero      Rol = "FINANCIERO"
)

// rolesRevisores are excluded from self-service draft creation so the same
// person never sits on both sides of a workflow instance.
var rolesRevisores = map[Rol]struct{}{
	RolSuperAdmin:      {},
	RolAdmin:           {},
	RolSecretaria:      {},
	RolDTM:             {},
	RolMetodologo:      {},
	RolPDA:             {},
	RolComprasPublicas: {},
	RolFinanciero:      {},
}

func EsRolRevisor(rol Rol) bool {
	_, ok := rolesRevisores[rol]
	return ok
}

func TieneRolRevisor(roles []Rol) bool {
	for _, rol := range roles {
		if EsRolRevisor(rol) {
			return true
		}
	}
	return false
}

func TieneRol(roles []Rol, buscado Rol) bool {
	for _, rol := range roles {
		if rol == buscado {
			return true
		}
	}
	return false
}

// Principal is the acting user as resolved by the identity provider,
// passed explicitly into every operation.
type Principal struct {
	UsuarioID    string
	Roles        []Rol
	DisciplinaID string
}
