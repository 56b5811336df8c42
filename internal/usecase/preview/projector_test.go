package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"avales/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "avales/internal/infrastructure/persistence/sqlite/repository"
	"avales/internal/ports"
)

func setupProjector(t *testing.T) (*Projector, *sqliterepo.AvalRepository) {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Evento{}, &model.Aval{}, &model.Historial{}, &model.Artefacto{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := sqliterepo.NewAvalRepository(db)
	return NewProjector(repo), repo
}

func seedAvalConEvento(t *testing.T, repo *sqliterepo.AvalRepository) string {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.CreateEvento(ctx, ports.Evento{
		EventoID:        "evt-1",
		Nombre:          "Campeonato Nacional de Judo",
		Lugar:           "Cuenca",
		FechaInicio:     "2026-03-10",
		FechaFin:        "2026-03-14",
		CuposMasculinos: 1,
		CuposFemeninos:  1,
		Disponible:      true,
		CreadoEn:        "2026-02-01T09:00:00Z",
	}); err != nil {
		t.Fatalf("CreateEvento() error = %v", err)
	}

	if _, err := repo.CreateAval(ctx, ports.Aval{
		AvalID:        "aval-1",
		Codigo:        "AV-TEST01",
		EventoID:      "evt-1",
		CreadorID:     "user-1",
		DisciplinaID:  "disc-judo",
		Convocatoria:  "conv.pdf",
		Estado:        "SOLICITADO",
		Version:       2,
		CreadoEn:      "2026-02-02T09:00:00Z",
		ActualizadoEn: "2026-02-02T09:00:00Z",
	}); err != nil {
		t.Fatalf("CreateAval() error = %v", err)
	}
	return "aval-1"
}

func TestNominaSinExpediente(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)

	view, err := projector.Nomina(context.Background(), avalID)
	if err != nil {
		t.Fatalf("Nomina() error = %v", err)
	}
	if view.Codigo != "AV-TEST01" || view.Evento != "Campeonato Nacional de Judo" {
		t.Fatalf("view header = %+v", view)
	}
	if len(view.Participantes) != 0 {
		t.Fatalf("participantes = %+v, want empty roster", view.Participantes)
	}
}

func TestNominaConExpediente(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)
	ctx := context.Background()

	expediente := `{"participantes":[{"deportista_id":"dep-1","nombre":"Ana","genero":"FEMENINO"},{"deportista_id":"dep-2","genero":"MASCULINO"}]}`
	if err := repo.UpsertArtefacto(ctx, ports.ArtefactoUpsert{
		AvalID:      avalID,
		Etapa:       "SOLICITUD",
		PayloadJSON: expediente,
		ActorID:     "user-1",
		Momento:     "2026-02-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertArtefacto() error = %v", err)
	}

	view, err := projector.Nomina(ctx, avalID)
	if err != nil {
		t.Fatalf("Nomina() error = %v", err)
	}
	if len(view.Participantes) != 2 {
		t.Fatalf("participantes len = %d, want 2", len(view.Participantes))
	}
	if view.Participantes[0].Nombre != "Ana" {
		t.Fatalf("participante[0] = %+v", view.Participantes[0])
	}
	// Missing names render as the placeholder, not as blanks.
	if view.Participantes[1].Nombre != Pendiente {
		t.Fatalf("participante[1].Nombre = %q, want %q", view.Participantes[1].Nombre, Pendiente)
	}
}

func TestSolicitudDerivaEtapaYTotales(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)
	ctx := context.Background()

	expediente := `{
		"participantes":[{"deportista_id":"dep-1","nombre":"Ana","genero":"FEMENINO"}],
		"logistica":{"salida":"2026-03-09","retorno":"2026-03-15"},
		"objetivos":["podio por equipos"],
		"criterios":["ranking nacional"],
		"presupuesto":[{"descripcion":"transporte","monto":450},{"descripcion":"hospedaje","monto":300}]
	}`
	if err := repo.UpsertArtefacto(ctx, ports.ArtefactoUpsert{
		AvalID:      avalID,
		Etapa:       "SOLICITUD",
		PayloadJSON: expediente,
		ActorID:     "user-1",
		Momento:     "2026-02-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertArtefacto() error = %v", err)
	}
	if err := repo.AppendHistorial(ctx, ports.EntradaHistorialCreate{
		AvalID:    avalID,
		Etapa:     "REVISION_METODOLOGO",
		Resultado: "APROBADO",
		ActorID:   "user-1",
		CreadoEn:  "2026-02-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("AppendHistorial() error = %v", err)
	}

	view, err := projector.Solicitud(ctx, avalID)
	if err != nil {
		t.Fatalf("Solicitud() error = %v", err)
	}
	if view.FechaSalida != "2026-03-09" || view.FechaRetorno != "2026-03-15" {
		t.Fatalf("fechas = %q / %q", view.FechaSalida, view.FechaRetorno)
	}
	if view.PresupuestoTotal != 750 {
		t.Fatalf("presupuesto total = %v, want 750", view.PresupuestoTotal)
	}
	if view.EtapaActual != "REVISION_METODOLOGO" {
		t.Fatalf("etapa actual = %q", view.EtapaActual)
	}
}

func TestSolicitudSinExpedienteUsaPlaceholders(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)

	view, err := projector.Solicitud(context.Background(), avalID)
	if err != nil {
		t.Fatalf("Solicitud() error = %v", err)
	}
	if view.FechaSalida != Pendiente || view.FechaRetorno != Pendiente {
		t.Fatalf("fechas = %q / %q, want placeholders", view.FechaSalida, view.FechaRetorno)
	}
	if view.EtapaActual != "SOLICITUD" {
		t.Fatalf("etapa actual = %q, want SOLICITUD", view.EtapaActual)
	}
}

func TestChecklistPendienteYEmitida(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)
	ctx := context.Background()

	view, err := projector.Checklist(ctx, avalID)
	if err != nil {
		t.Fatalf("Checklist() error = %v", err)
	}
	if view.Estado != Pendiente || len(view.Items) != 0 {
		t.Fatalf("checklist before review = %+v", view)
	}

	if err := repo.UpsertArtefacto(ctx, ports.ArtefactoUpsert{
		AvalID:      avalID,
		Etapa:       "REVISION_METODOLOGO",
		PayloadJSON: `{"items":[{"criterio":"nomina completa","cumple":true,"observacion":""}]}`,
		ActorID:     "user-2",
		Momento:     "2026-02-03T10:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertArtefacto() error = %v", err)
	}

	view, err = projector.Checklist(ctx, avalID)
	if err != nil {
		t.Fatalf("Checklist() error = %v", err)
	}
	if view.Estado != "EMITIDA" {
		t.Fatalf("checklist estado = %q", view.Estado)
	}
	if len(view.Items) != 1 || view.Items[0].Criterio != "nomina completa" || !view.Items[0].Cumple {
		t.Fatalf("checklist items = %+v", view.Items)
	}
}

func TestCertificadoPDA(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)
	ctx := context.Background()

	view, err := projector.CertificadoPDA(ctx, avalID)
	if err != nil {
		t.Fatalf("CertificadoPDA() error = %v", err)
	}
	if view.Partida != Pendiente || view.EmitidoPor != Pendiente || view.Certifica {
		t.Fatalf("certificado before stage = %+v", view)
	}

	if err := repo.UpsertArtefacto(ctx, ports.ArtefactoUpsert{
		AvalID:      avalID,
		Etapa:       "PDA",
		PayloadJSON: `{"partida":"730606","monto":750,"certifica":true}`,
		ActorID:     "user-pda",
		Momento:     "2026-02-04T10:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertArtefacto() error = %v", err)
	}

	view, err = projector.CertificadoPDA(ctx, avalID)
	if err != nil {
		t.Fatalf("CertificadoPDA() error = %v", err)
	}
	if view.Partida != "730606" || view.Monto != 750 || !view.Certifica {
		t.Fatalf("certificado = %+v", view)
	}
	if view.EmitidoPor != "user-pda" || view.EmitidoEn != "2026-02-04T10:00:00Z" {
		t.Fatalf("emision = %q / %q", view.EmitidoPor, view.EmitidoEn)
	}
}

func TestCertificadoCompras(t *testing.T) {
	projector, repo := setupProjector(t)
	avalID := seedAvalConEvento(t, repo)
	ctx := context.Background()

	if err := repo.UpsertArtefacto(ctx, ports.ArtefactoUpsert{
		AvalID:      avalID,
		Etapa:       "CONTROL_PREVIO",
		PayloadJSON: `{"proceso":"CP-2026-014","certifica":true}`,
		ActorID:     "user-compras",
		Momento:     "2026-02-05T10:00:00Z",
	}); err != nil {
		t.Fatalf("UpsertArtefacto() error = %v", err)
	}

	view, err := projector.CertificadoCompras(ctx, avalID)
	if err != nil {
		t.Fatalf("CertificadoCompras() error = %v", err)
	}
	if view.Proceso != "CP-2026-014" || !view.Certifica || view.EmitidoPor != "user-compras" {
		t.Fatalf("certificado = %+v", view)
	}
}

func TestProjectorAvalInexistente(t *testing.T) {
	projector, _ := setupProjector(t)

	_, err := projector.Nomina(context.Background(), "no-existe")
	if !errors.Is(err, ports.ErrAvalNotFound) {
		t.Fatalf("Nomina(missing) = %v", err)
	}
}
