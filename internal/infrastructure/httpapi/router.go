// Package httpapi exposes the aval workflow over JSON. The identity
// layer upstream resolves the acting user; handlers only read the
// pre-resolved principal from request headers.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	avaluc "avales/internal/usecase/aval"
	"avales/internal/usecase/preview"
)

func NewRouter(svc *avaluc.Service, projector *preview.Projector) http.Handler {
	h := &handler{svc: svc, projector: projector}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/eventos", h.registrarEvento)
		r.Get("/eventos", h.listEventos)

		r.Post("/avales", h.crearBorrador)
		r.Get("/avales", h.listAvales)

		r.Route("/avales/{avalID}", func(r chi.Router) {
			r.Get("/", h.getAval)
			r.Post("/enviar", h.enviar)
			r.Put("/artefactos/{etapa}", h.guardarArtefacto)
			r.Post("/aprobar", h.aprobar)
			r.Post("/rechazar", h.rechazar)
			r.Post("/cancelar", h.cancelar)

			r.Get("/previews/nomina", h.previewNomina)
			r.Get("/previews/solicitud", h.previewSolicitud)
			r.Get("/previews/checklist", h.previewChecklist)
			r.Get("/previews/certificado-pda", h.previewCertificadoPDA)
			r.Get("/previews/certificado-compras", h.previewCertificadoCompras)
		})
	})

	return r
}
