package aval

import (
	"errors"
	"testing"
)

var todosLosRoles = []Rol{
	RolSuperAdmin,
	RolAdmin,
	RolSecretaria,
	RolDTM,
	RolMetodologo,
	RolEntrenador,
	RolUsuario,
	RolDeportista,
	RolPDA,
	RolComprasPublicas,
	RolFinanciero,
}

func TestPuedeActuarPorEtapa(t *testing.T) {
	autorizados := map[Etapa][]Rol{
		EtapaSolicitud:          {RolEntrenador},
		EtapaRevisionMetodologo: {RolMetodologo, RolDTM},
		EtapaRevisionDTM:        {RolDTM},
		EtapaPDA:                {RolPDA},
		EtapaControlPrevio:      {RolComprasPublicas},
		EtapaSecretaria:         {RolSecretaria},
		EtapaFinanciero:         {RolFinanciero},
	}

	for etapa, roles := range autorizados {
		permitidos := make(map[Rol]bool, len(roles))
		for _, rol := range roles {
			permitidos[rol] = true
		}
		for _, rol := range todosLosRoles {
			got := PuedeActuar([]Rol{rol}, etapa)
			if got != permitidos[rol] {
				t.Errorf("PuedeActuar(%s, %s) = %v, want %v", rol, etapa, got, permitidos[rol])
			}
		}
	}
}

func TestPuedeActuarEtapaDesconocida(t *testing.T) {
	if PuedeActuar([]Rol{RolSuperAdmin}, "NO_EXISTE") {
		t.Fatal("unknown etapa must never authorize")
	}
}

func TestPuedeActuarSinRoles(t *testing.T) {
	if PuedeActuar(nil, EtapaRevisionDTM) {
		t.Fatal("empty role set must not authorize")
	}
}

func TestPuedeActuarMultiplesRoles(t *testing.T) {
	roles := []Rol{RolUsuario, RolDTM}
	if !PuedeActuar(roles, EtapaRevisionDTM) {
		t.Fatal("a matching role among several must authorize")
	}
	if !PuedeActuar(roles, EtapaRevisionMetodologo) {
		t.Fatal("DTM must also clear the methodology review stage")
	}
}

func TestValidarCreadorBorrador(t *testing.T) {
	valido := Principal{UsuarioID: "u-1", Roles: []Rol{RolEntrenador}, DisciplinaID: "d-1"}
	if err := ValidarCreadorBorrador(valido); err != nil {
		t.Fatalf("ValidarCreadorBorrador(valid) = %v", err)
	}

	var vErr *ValidationError
	err := ValidarCreadorBorrador(Principal{Roles: []Rol{RolEntrenador}, DisciplinaID: "d-1"})
	if !errors.As(err, &vErr) || vErr.Campo != "usuario_id" {
		t.Fatalf("missing usuario_id: got %v", err)
	}

	var pErr *PermissionError
	err = ValidarCreadorBorrador(Principal{UsuarioID: "u-1", Roles: []Rol{RolEntrenador}})
	if !errors.As(err, &pErr) {
		t.Fatalf("missing disciplina: got %v", err)
	}
}

func TestValidarCreadorBorradorExcluyeRevisores(t *testing.T) {
	for rol := range rolesRevisores {
		p := Principal{UsuarioID: "u-1", Roles: []Rol{RolEntrenador, rol}, DisciplinaID: "d-1"}
		var pErr *PermissionError
		if err := ValidarCreadorBorrador(p); !errors.As(err, &pErr) {
			t.Errorf("reviewer role %s should block draft creation, got %v", rol, err)
		}
	}
}

func TestValidarActorEtapa(t *testing.T) {
	p := Principal{UsuarioID: "u-1", Roles: []Rol{RolMetodologo}}

	if err := ValidarActorEtapa(p, EtapaRevisionMetodologo); err != nil {
		t.Fatalf("authorized actor rejected: %v", err)
	}

	var pErr *PermissionError
	err := ValidarActorEtapa(p, EtapaFinanciero)
	if !errors.As(err, &pErr) {
		t.Fatalf("unauthorized actor: got %v", err)
	}
	if pErr.Etapa != EtapaFinanciero {
		t.Fatalf("PermissionError.Etapa = %s, want %s", pErr.Etapa, EtapaFinanciero)
	}

	var vErr *ValidationError
	if err := ValidarActorEtapa(p, "NO_EXISTE"); !errors.As(err, &vErr) {
		t.Fatalf("unknown etapa: got %v", err)
	}
}
