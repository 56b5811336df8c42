package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"avales/internal/bootstrap/logging"
	domainaval "avales/internal/domain/aval"
	"avales/internal/errs"
	"avales/internal/ports"
	avaluc "avales/internal/usecase/aval"
	"avales/internal/usecase/preview"
)

type handler struct {
	svc       *avaluc.Service
	projector *preview.Projector
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Campo string `json:"campo,omitempty"`
	Etapa string `json:"etapa,omitempty"`
}

// principalFromRequest reads the pre-resolved identity headers. Roles is
// a comma-separated list; an empty usuario id surfaces later as a typed
// domain error, not here.
func principalFromRequest(r *http.Request) domainaval.Principal {
	var roles []domainaval.Rol
	for _, raw := range strings.Split(r.Header.Get("X-Roles"), ",") {
		rol := strings.ToUpper(strings.TrimSpace(raw))
		if rol == "" {
			continue
		}
		roles = append(roles, domainaval.Rol(rol))
	}

	return domainaval.Principal{
		UsuarioID:    strings.TrimSpace(r.Header.Get("X-Usuario-Id")),
		Roles:        roles,
		DisciplinaID: strings.TrimSpace(r.Header.Get("X-Disciplina-Id")),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the domain error taxonomy onto HTTP statuses with a
// machine-readable kind so clients can distinguish retryable conflicts
// from permission denials.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domainaval.ValidationError
	var stateErr *domainaval.StateError
	var permissionErr *domainaval.PermissionError
	var conflictErr *domainaval.ConflictError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: validationErr.Error(),
			Kind:  "validation",
			Campo: validationErr.Campo,
		})
	case errors.As(err, &permissionErr):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error: permissionErr.Error(),
			Kind:  "permission",
			Etapa: string(permissionErr.Etapa),
		})
	case errors.As(err, &stateErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: stateErr.Error(),
			Kind:  "state",
			Etapa: string(stateErr.Etapa),
		})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: conflictErr.Error(),
			Kind:  "conflict",
		})
	case errors.Is(err, ports.ErrAvalNotFound),
		errors.Is(err, ports.ErrEventoNotFound),
		errors.Is(err, ports.ErrArtefactoNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
	default:
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
	}
}

type registrarEventoRequest struct {
	Nombre          string `json:"nombre"`
	Lugar           string `json:"lugar"`
	FechaInicio     string `json:"fecha_inicio"`
	FechaFin        string `json:"fecha_fin"`
	CuposMasculinos int    `json:"cupos_masculinos"`
	CuposFemeninos  int    `json:"cupos_femeninos"`
	Disponible      bool   `json:"disponible"`
}

func (h *handler) registrarEvento(w http.ResponseWriter, r *http.Request) {
	var req registrarEventoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cuerpo JSON invalido", Kind: "bad_request"})
		return
	}

	eventoID, err := h.svc.RegistrarEvento(r.Context(), avaluc.RegistrarEventoInput{
		Nombre:          req.Nombre,
		Lugar:           req.Lugar,
		FechaInicio:     req.FechaInicio,
		FechaFin:        req.FechaFin,
		CuposMasculinos: req.CuposMasculinos,
		CuposFemeninos:  req.CuposFemeninos,
		Disponible:      req.Disponible,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"evento_id": eventoID})
}

func (h *handler) listEventos(w http.ResponseWriter, r *http.Request) {
	soloDisponibles := r.URL.Query().Get("disponibles") == "true"
	eventos, err := h.svc.ListEventos(r.Context(), soloDisponibles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventos)
}

type crearBorradorRequest struct {
	EventoID     string `json:"evento_id"`
	Convocatoria string `json:"convocatoria"`
}

func (h *handler) crearBorrador(w http.ResponseWriter, r *http.Request) {
	var req crearBorradorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cuerpo JSON invalido", Kind: "bad_request"})
		return
	}

	detalle, err := h.svc.CrearBorrador(r.Context(), avaluc.CrearBorradorInput{
		EventoID:     req.EventoID,
		Convocatoria: req.Convocatoria,
		Principal:    principalFromRequest(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detalle)
}

func (h *handler) listAvales(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := h.svc.ListAvales(r.Context(), ports.AvalFilter{
		Estado:    query.Get("estado"),
		CreadorID: query.Get("creador"),
		EventoID:  query.Get("evento"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) getAval(w http.ResponseWriter, r *http.Request) {
	detalle, err := h.svc.GetAval(r.Context(), chi.URLParam(r, "avalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detalle)
}

func (h *handler) enviar(w http.ResponseWriter, r *http.Request) {
	var expediente domainaval.ExpedienteTecnico
	if err := json.NewDecoder(r.Body).Decode(&expediente); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cuerpo JSON invalido", Kind: "bad_request"})
		return
	}

	if err := h.svc.Enviar(r.Context(), avaluc.EnviarInput{
		AvalID:     chi.URLParam(r, "avalID"),
		Principal:  principalFromRequest(r),
		Expediente: expediente,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"estado": string(domainaval.EstadoSolicitado)})
}

func (h *handler) guardarArtefacto(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cuerpo JSON invalido", Kind: "bad_request"})
		return
	}

	if err := h.svc.GuardarArtefacto(r.Context(), avaluc.GuardarArtefactoInput{
		AvalID:    chi.URLParam(r, "avalID"),
		Etapa:     domainaval.Etapa(strings.ToUpper(chi.URLParam(r, "etapa"))),
		Principal: principalFromRequest(r),
		Payload:   payload,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type etapaRequest struct {
	Etapa  string `json:"etapa"`
	Motivo string `json:"motivo,omitempty"`
}

func (h *handler) aprobar(w http.ResponseWriter, r *http.Request) {
	var req etapaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cuerpo JSON invalido", Kind: "bad_request"})
		return
	}

	avalID := chi.URLParam(r, "avalID")
	if err := h.svc.Aprobar(r.Context(), avaluc.AprobarInput{
		AvalID:    avalID,
		Etapa:     domainaval.Etapa(strings.ToUpper(req.Etapa)),
		Principal: principalFromRequest(r),
	}); err != nil {
		writeError(w, r, err)
		return
	}

	detalle, err := h.svc.GetAval(r.Context(), avalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detalle)
}

func (h *handler) rechazar(w http.ResponseWriter, r *http.Request) {
	var req etapaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cuerpo JSON invalido", Kind: "bad_request"})
		return
	}

	if err := h.svc.Rechazar(r.Context(), avaluc.RechazarInput{
		AvalID:    chi.URLParam(r, "avalID"),
		Etapa:     domainaval.Etapa(strings.ToUpper(req.Etapa)),
		Principal: principalFromRequest(r),
		Motivo:    req.Motivo,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"estado": string(domainaval.EstadoRechazado)})
}

func (h *handler) cancelar(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancelar(r.Context(), avaluc.CancelarInput{
		AvalID:    chi.URLParam(r, "avalID"),
		Principal: principalFromRequest(r),
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"estado": string(domainaval.EstadoCancelado)})
}

func (h *handler) previewNomina(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.Nomina(r.Context(), chi.URLParam(r, "avalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) previewSolicitud(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.Solicitud(r.Context(), chi.URLParam(r, "avalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) previewChecklist(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.Checklist(r.Context(), chi.URLParam(r, "avalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) previewCertificadoPDA(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.CertificadoPDA(r.Context(), chi.URLParam(r, "avalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) previewCertificadoCompras(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.CertificadoCompras(r.Context(), chi.URLParam(r, "avalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
