// Package preview projects an aval and its stored artifacts into
// denormalized view models for the document-rendering layer. Pure reads:
// no mutation, safe to call at any aval state, with placeholders for the
// stages that have not produced data yet.
package preview

import (
	"context"
	"encoding/json"
	"errors"

	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
)

// Pendiente is the placeholder shown for fields whose stage has not
// produced data yet.
const Pendiente = "PENDIENTE"

type Projector struct {
	repo ports.AvalReadRepository
}

func NewProjector(repo ports.AvalReadRepository) *Projector {
	return &Projector{repo: repo}
}

type FilaNomina struct {
	DeportistaID string
	Nombre       string
	Genero       string
}

type NominaView struct {
	Codigo        string
	Evento        string
	Lugar         string
	Participantes []FilaNomina
}

type SolicitudView struct {
	Codigo           string
	Evento           string
	Lugar            string
	FechaSalida      string
	FechaRetorno     string
	Objetivos        []string
	Criterios        []string
	PresupuestoTotal float64
	EtapaActual      string
	Estado           string
}

type FilaChecklist struct {
	Criterio    string
	Cumple      bool
	Observacion string
}

type ChecklistView struct {
	Codigo string
	Items  []FilaChecklist
	Estado string
}

type CertificadoPDAView struct {
	Codigo     string
	Partida    string
	Monto      float64
	Certifica  bool
	EmitidoPor string
	EmitidoEn  string
}

type CertificadoComprasView struct {
	Codigo     string
	Proceso    string
	Certifica  bool
	EmitidoPor string
	EmitidoEn  string
}

func (p *Projector) contexto(ctx context.Context, avalID string) (ports.Aval, error) {
	if ctx == nil {
		return ports.Aval{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Aval{}, errs.Wrap(err, "check context")
	}
	if p.repo == nil {
		return ports.Aval{}, errors.New("aval repository is required")
	}
	return p.repo.GetAval(ctx, avalID)
}

func (p *Projector) expedienteDe(ctx context.Context, avalID string) (domainaval.ExpedienteTecnico, bool, error) {
	row, err := p.repo.GetArtefacto(ctx, avalID, string(domainaval.EtapaSolicitud))
	if err != nil {
		if errors.Is(err, ports.ErrArtefactoNotFound) {
			return domainaval.ExpedienteTecnico{}, false, nil
		}
		return domainaval.ExpedienteTecnico{}, false, err
	}

	var expediente domainaval.ExpedienteTecnico
	if err := json.Unmarshal([]byte(row.PayloadJSON), &expediente); err != nil {
		return domainaval.ExpedienteTecnico{}, false, errs.Wrap(err, "decode expediente")
	}
	return expediente, true, nil
}

// Nomina builds the nomination roster. Draft previews return an empty
// roster with the evento header resolved.
func (p *Projector) Nomina(ctx context.Context, avalID string) (NominaView, error) {
	avalRow, err := p.contexto(ctx, avalID)
	if err != nil {
		return NominaView{}, err
	}
	evento, err := p.repo.GetEvento(ctx, avalRow.EventoID)
	if err != nil {
		return NominaView{}, err
	}

	view := NominaView{
		Codigo: avalRow.Codigo,
		Evento: evento.Nombre,
		Lugar:  evento.Lugar,
	}

	expediente, found, err := p.expedienteDe(ctx, avalID)
	if err != nil {
		return NominaView{}, err
	}
	if !found {
		return view, nil
	}

	view.Participantes = make([]FilaNomina, 0, len(expediente.Participantes))
	for _, participante := range expediente.Participantes {
		nombre := participante.Nombre
		if nombre == "" {
			nombre = Pendiente
		}
		view.Participantes = append(view.Participantes, FilaNomina{
			DeportistaID: participante.DeportistaID,
			Nombre:       nombre,
			Genero:       string(participante.Genero),
		})
	}
	return view, nil
}

// Solicitud builds the request-letter fields.
func (p *Projector) Solicitud(ctx context.Context, avalID string) (SolicitudView, error) {
	avalRow, err := p.contexto(ctx, avalID)
	if err != nil {
		return SolicitudView{}, err
	}
	evento, err := p.repo.GetEvento(ctx, avalRow.EventoID)
	if err != nil {
		return SolicitudView{}, err
	}
	historial, err := p.repo.ListHistorial(ctx, avalID)
	if err != nil {
		return SolicitudView{}, err
	}

	entradas := make([]domainaval.EntradaHistorial, 0, len(historial))
	for _, row := range historial {
		entradas = append(entradas, domainaval.EntradaHistorial{
			Seq:   row.HistorialID,
			Etapa: domainaval.Etapa(row.Etapa),
		})
	}

	view := SolicitudView{
		Codigo:       avalRow.Codigo,
		Evento:       evento.Nombre,
		Lugar:        evento.Lugar,
		FechaSalida:  Pendiente,
		FechaRetorno: Pendiente,
		EtapaActual:  string(domainaval.EtapaActual(entradas)),
		Estado:       avalRow.Estado,
	}

	expediente, found, err := p.expedienteDe(ctx, avalID)
	if err != nil {
		return SolicitudView{}, err
	}
	if !found {
		return view, nil
	}

	view.FechaSalida = expediente.Logistica.Salida
	view.FechaRetorno = expediente.Logistica.Retorno
	view.Objetivos = expediente.Objetivos
	view.Criterios = expediente.Criterios
	for _, rubro := range expediente.Presupuesto {
		view.PresupuestoTotal += rubro.Monto
	}
	return view, nil
}

// Checklist builds the methodologist review checklist.
func (p *Projector) Checklist(ctx context.Context, avalID string) (ChecklistView, error) {
	avalRow, err := p.contexto(ctx, avalID)
	if err != nil {
		return ChecklistView{}, err
	}

	view := ChecklistView{
		Codigo: avalRow.Codigo,
		Estado: Pendiente,
	}

	row, err := p.repo.GetArtefacto(ctx, avalID, string(domainaval.EtapaRevisionMetodologo))
	if err != nil {
		if errors.Is(err, ports.ErrArtefactoNotFound) {
			return view, nil
		}
		return ChecklistView{}, err
	}

	var revision domainaval.RevisionMetodologica
	if err := json.Unmarshal([]byte(row.PayloadJSON), &revision); err != nil {
		return ChecklistView{}, errs.Wrap(err, "decode revision metodologica")
	}

	view.Estado = "EMITIDA"
	view.Items = make([]FilaChecklist, 0, len(revision.Items))
	for _, item := range revision.Items {
		view.Items = append(view.Items, FilaChecklist{
			Criterio:    item.Criterio,
			Cumple:      item.Cumple,
			Observacion: item.Observacion,
		})
	}
	return view, nil
}

// CertificadoPDA builds the budget-certification document fields.
func (p *Projector) CertificadoPDA(ctx context.Context, avalID string) (CertificadoPDAView, error) {
	avalRow, err := p.contexto(ctx, avalID)
	if err != nil {
		return CertificadoPDAView{}, err
	}

	view := CertificadoPDAView{
		Codigo:     avalRow.Codigo,
		Partida:    Pendiente,
		EmitidoPor: Pendiente,
		EmitidoEn:  Pendiente,
	}

	row, err := p.repo.GetArtefacto(ctx, avalID, string(domainaval.EtapaPDA))
	if err != nil {
		if errors.Is(err, ports.ErrArtefactoNotFound) {
			return view, nil
		}
		return CertificadoPDAView{}, err
	}

	var certificado domainaval.CertificadoPDA
	if err := json.Unmarshal([]byte(row.PayloadJSON), &certificado); err != nil {
		return CertificadoPDAView{}, errs.Wrap(err, "decode certificado PDA")
	}

	view.Partida = certificado.Partida
	view.Monto = certificado.Monto
	view.Certifica = certificado.Certifica
	view.EmitidoPor = row.CreadoPor
	view.EmitidoEn = row.ActualizadoEn
	return view, nil
}

// CertificadoCompras builds the public-procurement certificate fields.
func (p *Projector) CertificadoCompras(ctx context.Context, avalID string) (CertificadoComprasView, error) {
	avalRow, err := p.contexto(ctx, avalID)
	if err != nil {
		return CertificadoComprasView{}, err
	}

	view := CertificadoComprasView{
		Codigo:     avalRow.Codigo,
		Proceso:    Pendiente,
		EmitidoPor: Pendiente,
		EmitidoEn:  Pendiente,
	}

	row, err := p.repo.GetArtefacto(ctx, avalID, string(domainaval.EtapaControlPrevio))
	if err != nil {
		if errors.Is(err, ports.ErrArtefactoNotFound) {
			return view, nil
		}
		return CertificadoComprasView{}, err
	}

	var certificado domainaval.CertificadoComprasPublicas
	if err := json.Unmarshal([]byte(row.PayloadJSON), &certificado); err != nil {
		return CertificadoComprasView{}, errs.Wrap(err, "decode certificado compras publicas")
	}

	view.Proceso = certificado.Proceso
	view.Certifica = certificado.Certifica
	view.EmitidoPor = row.CreadoPor
	view.EmitidoEn = row.ActualizadoEn
	return view, nil
}
