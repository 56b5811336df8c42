package aval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainaval "avales/internal/domain/aval"
	"avales/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "avales/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "avales/internal/infrastructure/persistence/sqlite/uow"
	"avales/internal/ports"
)

type testCache struct {
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{
		data: make(map[string]string),
	}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func setupServiceWithDB(t *testing.T) (*Service, *testCache, *gorm.DB) {
	t.Helper()

	// One named in-memory database per test so fixtures never bleed
	// between tests sharing the process.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Evento{},
		&model.Aval{},
		&model.Historial{},
		&model.Artefacto{},
		&model.AvalKV{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	cache := newTestCache()
	repo := sqliterepo.NewAvalRepository(db)
	uow := sqliteuow.NewUnitOfWork(db)
	return NewService(repo, uow, cache), cache, db
}

func setupService(t *testing.T) (*Service, *testCache) {
	t.Helper()
	svc, cache, _ := setupServiceWithDB(t)
	return svc, cache
}

var (
	entrenador = domainaval.Principal{UsuarioID: "user-entrenador", Roles: []domainaval.Rol{domainaval.RolEntrenador}, DisciplinaID: "disc-judo"}
	metodologo = domainaval.Principal{UsuarioID: "user-metodologo", Roles: []domainaval.Rol{domainaval.RolMetodologo}}
	dtm        = domainaval.Principal{UsuarioID: "user-dtm", Roles: []domainaval.Rol{domainaval.RolDTM}}
	pda        = domainaval.Principal{UsuarioID: "user-pda", Roles: []domainaval.Rol{domainaval.RolPDA}}
	compras    = domainaval.Principal{UsuarioID: "user-compras", Roles: []domainaval.Rol{domainaval.RolComprasPublicas}}
	secretaria = domainaval.Principal{UsuarioID: "user-secretaria", Roles: []domainaval.Rol{domainaval.RolSecretaria}}
	financiero = domainaval.Principal{UsuarioID: "user-financiero", Roles: []domainaval.Rol{domainaval.RolFinanciero}}
)

func seedEvento(t *testing.T, svc *Service) string {
	t.Helper()

	eventoID, err := svc.RegistrarEvento(context.Background(), RegistrarEventoInput{
		Nombre:          "Campeonato Nacional de Judo",
		Lugar:           "Cuenca",
		FechaInicio:     "2026-03-10",
		FechaFin:        "2026-03-14",
		CuposMasculinos: 1,
		CuposFemeninos:  1,
		Disponible:      true,
	})
	if err != nil {
		t.Fatalf("RegistrarEvento() error = %v", err)
	}
	return eventoID
}

func expedienteDePrueba() domainaval.ExpedienteTecnico {
	return domainaval.ExpedienteTecnico{
		Participantes: []domainaval.Participante{
			{DeportistaID: "dep-1", Nombre: "Ana", Genero: domainaval.GeneroFemenino},
			{DeportistaID: "dep-2", Nombre: "Luis", Genero: domainaval.GeneroMasculino},
		},
		Logistica: domainaval.Logistica{
			Salida:     "2026-03-09",
			Retorno:    "2026-03-15",
			Transporte: "terrestre",
			Hospedaje:  "hotel sede",
		},
		Objetivos:   []string{"podio por equipos"},
		Criterios:   []string{"ranking nacional vigente"},
		Presupuesto: []domainaval.RubroPresupuesto{{Descripcion: "transporte", Monto: 450}},
	}
}

func seedBorrador(t *testing.T, svc *Service) AvalDetalle {
	t.Helper()

	eventoID := seedEvento(t, svc)
	detalle, err := svc.CrearBorrador(context.Background(), CrearBorradorInput{
		EventoID:     eventoID,
		Convocatoria: "convocatoria-2026-014.pdf",
		Principal:    entrenador,
	})
	if err != nil {
		t.Fatalf("CrearBorrador() error = %v", err)
	}
	return detalle
}

func seedSolicitado(t *testing.T, svc *Service) AvalDetalle {
	t.Helper()

	detalle := seedBorrador(t, svc)
	if err := svc.Enviar(context.Background(), EnviarInput{
		AvalID:     detalle.AvalID,
		Principal:  entrenador,
		Expediente: expedienteDePrueba(),
	}); err != nil {
		t.Fatalf("Enviar() error = %v", err)
	}
	return detalle
}

func TestRegistrarEventoValidaciones(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	casos := []struct {
		nombre string
		input  RegistrarEventoInput
		campo  string
	}{
		{"sin nombre", RegistrarEventoInput{FechaInicio: "2026-03-10", FechaFin: "2026-03-14", CuposMasculinos: 1}, "nombre"},
		{"sin fechas", RegistrarEventoInput{Nombre: "x", CuposMasculinos: 1}, "fechas"},
		{"fin antes de inicio", RegistrarEventoInput{Nombre: "x", FechaInicio: "2026-03-14", FechaFin: "2026-03-10", CuposMasculinos: 1}, "fechas"},
		{"cupos negativos", RegistrarEventoInput{Nombre: "x", FechaInicio: "2026-03-10", FechaFin: "2026-03-14", CuposMasculinos: -1}, "cupos"},
		{"sin cupos", RegistrarEventoInput{Nombre: "x", FechaInicio: "2026-03-10", FechaFin: "2026-03-14"}, "cupos"},
	}
	for _, caso := range casos {
		_, err := svc.RegistrarEvento(ctx, caso.input)
		var vErr *domainaval.ValidationError
		if !errors.As(err, &vErr) || vErr.Campo != caso.campo {
			t.Errorf("%s: got %v, want ValidationError on %s", caso.nombre, err, caso.campo)
		}
	}
}

func TestListEventosFiltraDisponibles(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	seedEvento(t, svc)
	if _, err := svc.RegistrarEvento(ctx, RegistrarEventoInput{
		Nombre:         "Evento cerrado",
		FechaInicio:    "2026-04-01",
		FechaFin:       "2026-04-02",
		CuposFemeninos: 2,
		Disponible:     false,
	}); err != nil {
		t.Fatalf("RegistrarEvento() error = %v", err)
	}

	todos, err := svc.ListEventos(ctx, false)
	if err != nil {
		t.Fatalf("ListEventos(false) error = %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("ListEventos(false) len = %d, want 2", len(todos))
	}

	disponibles, err := svc.ListEventos(ctx, true)
	if err != nil {
		t.Fatalf("ListEventos(true) error = %v", err)
	}
	if len(disponibles) != 1 || !disponibles[0].Disponible {
		t.Fatalf("ListEventos(true) = %+v", disponibles)
	}
}

func TestCrearBorrador(t *testing.T) {
	svc, cache := setupService(t)

	detalle := seedBorrador(t, svc)

	if !strings.HasPrefix(detalle.Codigo, "AV-") {
		t.Fatalf("codigo = %q", detalle.Codigo)
	}
	if detalle.Estado != string(domainaval.EstadoBorrador) {
		t.Fatalf("estado = %q, want BORRADOR", detalle.Estado)
	}
	if detalle.EtapaActual != string(domainaval.EtapaSolicitud) {
		t.Fatalf("etapa actual = %q, want SOLICITUD", detalle.EtapaActual)
	}
	if detalle.Version != 1 {
		t.Fatalf("version = %d, want 1", detalle.Version)
	}
	if cache.data[cacheEtapaKey(detalle.AvalID)] != string(domainaval.EtapaSolicitud) {
		t.Fatalf("cache etapa = %q", cache.data[cacheEtapaKey(detalle.AvalID)])
	}
}

func TestCrearBorradorRechazaRevisores(t *testing.T) {
	svc, _ := setupService(t)
	eventoID := seedEvento(t, svc)

	revisor := domainaval.Principal{
		UsuarioID:    "user-doble",
		Roles:        []domainaval.Rol{domainaval.RolEntrenador, domainaval.RolDTM},
		DisciplinaID: "disc-judo",
	}
	_, err := svc.CrearBorrador(context.Background(), CrearBorradorInput{
		EventoID:     eventoID,
		Convocatoria: "conv.pdf",
		Principal:    revisor,
	})
	var pErr *domainaval.PermissionError
	if !errors.As(err, &pErr) {
		t.Fatalf("reviewer draft: got %v, want PermissionError", err)
	}
}

func TestCrearBorradorRequiereConvocatoria(t *testing.T) {
	svc, _ := setupService(t)
	eventoID := seedEvento(t, svc)

	_, err := svc.CrearBorrador(context.Background(), CrearBorradorInput{
		EventoID:  eventoID,
		Principal: entrenador,
	})
	var vErr *domainaval.ValidationError
	if !errors.As(err, &vErr) || vErr.Campo != "convocatoria" {
		t.Fatalf("missing convocatoria: got %v", err)
	}
}

func TestCrearBorradorEventoNoDisponible(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	eventoID, err := svc.RegistrarEvento(ctx, RegistrarEventoInput{
		Nombre:          "Evento cerrado",
		FechaInicio:     "2026-04-01",
		FechaFin:        "2026-04-02",
		CuposMasculinos: 1,
		Disponible:      false,
	})
	if err != nil {
		t.Fatalf("RegistrarEvento() error = %v", err)
	}

	_, err = svc.CrearBorrador(ctx, CrearBorradorInput{
		EventoID:     eventoID,
		Convocatoria: "conv.pdf",
		Principal:    entrenador,
	})
	var sErr *domainaval.StateError
	if !errors.As(err, &sErr) {
		t.Fatalf("unavailable evento: got %v, want StateError", err)
	}
}

func TestCrearBorradorEventoInexistente(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CrearBorrador(context.Background(), CrearBorradorInput{
		EventoID:     "no-existe",
		Convocatoria: "conv.pdf",
		Principal:    entrenador,
	})
	if !errors.Is(err, ports.ErrEventoNotFound) {
		t.Fatalf("missing evento: got %v", err)
	}
}

func TestEnviarValidaCuposDelEvento(t *testing.T) {
	svc, _ := setupService(t)
	detalle := seedBorrador(t, svc)

	expediente := expedienteDePrueba()
	expediente.Participantes = expediente.Participantes[:1] // falta el cupo masculino

	err := svc.Enviar(context.Background(), EnviarInput{
		AvalID:     detalle.AvalID,
		Principal:  entrenador,
		Expediente: expediente,
	})
	var vErr *domainaval.ValidationError
	if !errors.As(err, &vErr) || vErr.Campo != "participantes" {
		t.Fatalf("roster mismatch: got %v", err)
	}

	// The draft must be untouched by the failed submission.
	got, err := svc.GetAval(context.Background(), detalle.AvalID)
	if err != nil {
		t.Fatalf("GetAval() error = %v", err)
	}
	if got.Estado != string(domainaval.EstadoBorrador) {
		t.Fatalf("estado after failed enviar = %q, want BORRADOR", got.Estado)
	}
	if len(got.Artefactos) != 0 {
		t.Fatalf("artefactos after failed enviar = %d, want 0", len(got.Artefactos))
	}
}

func TestEnviarSoloElCreador(t *testing.T) {
	svc, _ := setupService(t)
	detalle := seedBorrador(t, svc)

	otro := domainaval.Principal{UsuarioID: "user-otro", Roles: []domainaval.Rol{domainaval.RolEntrenador}, DisciplinaID: "disc-judo"}
	err := svc.Enviar(context.Background(), EnviarInput{
		AvalID:     detalle.AvalID,
		Principal:  otro,
		Expediente: expedienteDePrueba(),
	})
	var pErr *domainaval.PermissionError
	if !errors.As(err, &pErr) {
		t.Fatalf("foreign submitter: got %v, want PermissionError", err)
	}
}

func TestEnviarGuardaExpedienteYEstado(t *testing.T) {
	svc, cache := setupService(t)
	detalle := seedSolicitado(t, svc)

	got, err := svc.GetAval(context.Background(), detalle.AvalID)
	if err != nil {
		t.Fatalf("GetAval() error = %v", err)
	}
	if got.Estado != string(domainaval.EstadoSolicitado) {
		t.Fatalf("estado = %q, want SOLICITADO", got.Estado)
	}
	if got.EtapaActual != string(domainaval.EtapaSolicitud) {
		t.Fatalf("etapa actual = %q, want SOLICITUD", got.EtapaActual)
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}
	if len(got.Artefactos) != 1 || got.Artefactos[0].Etapa != string(domainaval.EtapaSolicitud) {
		t.Fatalf("artefactos = %+v", got.Artefactos)
	}
	if cache.data[cacheEtapaKey(detalle.AvalID)] != string(domainaval.EtapaSolicitud) {
		t.Fatalf("cache etapa = %q", cache.data[cacheEtapaKey(detalle.AvalID)])
	}
}

func TestEnviarSoloDesdeBorrador(t *testing.T) {
	svc, _ := setupService(t)
	detalle := seedSolicitado(t, svc)

	err := svc.Enviar(context.Background(), EnviarInput{
		AvalID:     detalle.AvalID,
		Principal:  entrenador,
		Expediente: expedienteDePrueba(),
	})
	var sErr *domainaval.StateError
	if !errors.As(err, &sErr) {
		t.Fatalf("double enviar: got %v, want StateError", err)
	}
}

func TestGetAvalInexistente(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetAval(context.Background(), "no-existe")
	if !errors.Is(err, ports.ErrAvalNotFound) {
		t.Fatalf("GetAval(missing) = %v", err)
	}
}
