package aval

import "testing"

func TestEtapaActualSinHistorial(t *testing.T) {
	if etapa := EtapaActual(nil); etapa != EtapaSolicitud {
		t.Fatalf("EtapaActual(nil) = %s, want %s", etapa, EtapaSolicitud)
	}
}

func TestEtapaActualUsaLaUltimaEntrada(t *testing.T) {
	historial := []EntradaHistorial{
		{Seq: 1, Etapa: EtapaRevisionMetodologo, Resultado: ResultadoAprobado},
		{Seq: 2, Etapa: EtapaRevisionDTM, Resultado: ResultadoAprobado},
		{Seq: 3, Etapa: EtapaPDA, Resultado: ResultadoAprobado},
	}
	if etapa := EtapaActual(historial); etapa != EtapaPDA {
		t.Fatalf("EtapaActual = %s, want %s", etapa, EtapaPDA)
	}
}

func TestEtapaActualIgnoraTimestamps(t *testing.T) {
	// Seq order is authoritative even when timestamps collide or run
	// backwards (clock skew between writers).
	ts := "2026-03-01T10:00:00Z"
	historial := []EntradaHistorial{
		{Seq: 1, Etapa: EtapaRevisionMetodologo, CreadoEn: ts},
		{Seq: 2, Etapa: EtapaRevisionDTM, CreadoEn: ts},
	}
	if etapa := EtapaActual(historial); etapa != EtapaRevisionDTM {
		t.Fatalf("EtapaActual = %s, want %s", etapa, EtapaRevisionDTM)
	}
}

func TestEtapaActualOmiteCancelaciones(t *testing.T) {
	historial := []EntradaHistorial{
		{Seq: 1, Etapa: EtapaRevisionMetodologo, Resultado: ResultadoAprobado},
		{Seq: 2, Resultado: ResultadoCancelado},
	}
	if etapa := EtapaActual(historial); etapa != EtapaRevisionMetodologo {
		t.Fatalf("EtapaActual = %s, want %s", etapa, EtapaRevisionMetodologo)
	}

	soloCancelacion := []EntradaHistorial{{Seq: 1, Resultado: ResultadoCancelado}}
	if etapa := EtapaActual(soloCancelacion); etapa != EtapaSolicitud {
		t.Fatalf("EtapaActual(cancel only) = %s, want %s", etapa, EtapaSolicitud)
	}
}

func TestEtapaActualEsDeterminista(t *testing.T) {
	historial := []EntradaHistorial{
		{Seq: 1, Etapa: EtapaRevisionMetodologo},
		{Seq: 2, Etapa: EtapaRevisionDTM},
	}
	primera := EtapaActual(historial)
	for i := 0; i < 5; i++ {
		if etapa := EtapaActual(historial); etapa != primera {
			t.Fatalf("derivation not stable: %s then %s", primera, etapa)
		}
	}
}

func TestEtapaPendienteSinHistorial(t *testing.T) {
	// Sin historial el aval se muestra en SOLICITUD, pero la revision que
	// espera es la metodologica.
	if etapa := EtapaPendiente(nil); etapa != EtapaRevisionMetodologo {
		t.Fatalf("EtapaPendiente(nil) = %s, want %s", etapa, EtapaRevisionMetodologo)
	}

	soloCancelacion := []EntradaHistorial{{Seq: 1, Resultado: ResultadoCancelado}}
	if etapa := EtapaPendiente(soloCancelacion); etapa != EtapaRevisionMetodologo {
		t.Fatalf("EtapaPendiente(cancel only) = %s, want %s", etapa, EtapaRevisionMetodologo)
	}
}

func TestEtapaPendienteSigueALaActual(t *testing.T) {
	historial := []EntradaHistorial{
		{Seq: 1, Etapa: EtapaRevisionDTM, Resultado: ResultadoAprobado},
	}
	if etapa := EtapaPendiente(historial); etapa != EtapaRevisionDTM {
		t.Fatalf("EtapaPendiente = %s, want %s", etapa, EtapaRevisionDTM)
	}
}

func TestEsProgresionMonotona(t *testing.T) {
	valida := []EntradaHistorial{
		{Etapa: EtapaRevisionMetodologo},
		{Etapa: EtapaRevisionDTM},
		{Etapa: EtapaRevisionDTM}, // final approve repeats the last stage
	}
	if !EsProgresionMonotona(valida) {
		t.Fatal("non-decreasing history reported as non-monotonic")
	}

	conCancelacion := []EntradaHistorial{
		{Etapa: EtapaRevisionDTM},
		{Resultado: ResultadoCancelado},
	}
	if !EsProgresionMonotona(conCancelacion) {
		t.Fatal("cancellation entries must not break monotonicity")
	}

	regresiva := []EntradaHistorial{
		{Etapa: EtapaPDA},
		{Etapa: EtapaRevisionMetodologo},
	}
	if EsProgresionMonotona(regresiva) {
		t.Fatal("ordinal regression reported as monotonic")
	}

	desconocida := []EntradaHistorial{{Etapa: "NO_EXISTE"}}
	if EsProgresionMonotona(desconocida) {
		t.Fatal("unknown etapa reported as monotonic")
	}
}
