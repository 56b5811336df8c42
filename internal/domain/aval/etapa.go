package aval

// Etapa is a workflow stage key.
type Etapa string

const (
	EtapaSolicitud          Etapa = "SOLICITUD"
	EtapaRevisionMetodologo Etapa = "REVISION_METODOLOGO"
	EtapaRevisionDTM        Etapa = "REVISION_DTM"
	EtapaPDA                Etapa = "PDA"
	EtapaControlPrevio      Etapa = "CONTROL_PREVIO"
	EtapaSecretaria         Etapa = "SECRETARIA"
	EtapaFinanciero         Etapa = "FINANCIERO"
)

// EtapaSpec is a registry entry: static configuration, not persisted
// per aval.
type EtapaSpec struct {
	Clave             Etapa
	Ordinal           int
	Nombre            string
	Roles             []Rol
	RequiereArtefacto bool
}

// registroEtapas is the canonical, totally ordered stage catalog. Role
// ownership is data here, not code: REVISION_METODOLOGO currently accepts
// both METODOLOGO and DTM pending a business decision on final ownership.
var registroEtapas = []EtapaSpec{
	{Clave: EtapaSolicitud, Ordinal: 1, Nombre: "Solicitud", Roles: []Rol{RolEntrenador}},
	{Clave: EtapaRevisionMetodologo, Ordinal: 2, Nombre: "Revisión metodológica", Roles: []Rol{RolMetodologo, RolDTM}, RequiereArtefacto: true},
	{Clave: EtapaRevisionDTM, Ordinal: 3, Nombre: "Revisión DTM", Roles: []Rol{RolDTM}, RequiereArtefacto: true},
	{Clave: EtapaPDA, Ordinal: 4, Nombre: "Certificación PDA", Roles: []Rol{RolPDA}, RequiereArtefacto: true},
	{Clave: EtapaControlPrevio, Ordinal: 5, Nombre: "Control previo", Roles: []Rol{RolComprasPublicas}, RequiereArtefacto: true},
	{Clave: EtapaSecretaria, Ordinal: 6, Nombre: "Secretaría", Roles: []Rol{RolSecretaria}},
	{Clave: EtapaFinanciero, Ordinal: 7, Nombre: "Financiero", Roles: []Rol{RolFinanciero}},
}

var indiceEtapas = func() map[Etapa]int {
	index := make(map[Etapa]int, len(registroEtapas))
	for i, spec := range registroEtapas {
		index[spec.Clave] = i
	}
	return index
}()

// Etapas returns the registry in ordinal order.
func Etapas() []EtapaSpec {
	out := make([]EtapaSpec, len(registroEtapas))
	copy(out, registroEtapas)
	return out
}

func SpecDeEtapa(etapa Etapa) (EtapaSpec, bool) {
	i, ok := indiceEtapas[etapa]
	if !ok {
		return EtapaSpec{}, false
	}
	return registroEtapas[i], true
}

func EsEtapaValida(etapa Etapa) bool {
	_, ok := indiceEtapas[etapa]
	return ok
}

// SiguienteEtapa returns the stage immediately after etapa in ordinal
// order. ok is false when etapa is the last stage (terminal approval) or
// unknown.
func SiguienteEtapa(etapa Etapa) (Etapa, bool) {
	i, found := indiceEtapas[etapa]
	if !found || i+1 >= len(registroEtapas) {
		return "", false
	}
	return registroEtapas[i+1].Clave, true
}

func OrdinalDeEtapa(etapa Etapa) (int, bool) {
	i, ok := indiceEtapas[etapa]
	if !ok {
		return 0, false
	}
	return registroEtapas[i].Ordinal, true
}

// NombreDeEtapa returns the display label, or the raw key when unknown.
func NombreDeEtapa(etapa Etapa) string {
	spec, ok := SpecDeEtapa(etapa)
	if !ok {
		return string(etapa)
	}
	return spec.Nombre
}
