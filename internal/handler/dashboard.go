package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/handler/views"
	"github.com/dharmapatha/portal/internal/model"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	p := h.page(r, "NavDashboard")
	history, err := h.store.ListAssessmentsByUser(r.Context(), id.User.ID)
	if err != nil {
		slog.Error("failed to list assessments", "user_id", id.User.ID, "error", err)
		p = withNotice(p, "AssessmentsLoadFailed")
	}
	h.render(w, r, http.StatusOK, views.DashboardPage(p, history))
}

func (h *Handler) handleConsultationPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.ConsultationPage(h.page(r, "ConsultationTitle"), model.ConsultationRequest{}))
}

// handleConsultation validates a booking request. Requests are only logged;
// the team follows up by email.
func (h *Handler) handleConsultation(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	req := model.ConsultationRequest{
		Topic:         r.FormValue("topic"),
		PreferredDate: strings.TrimSpace(r.FormValue("preferred_date")),
		Message:       strings.TrimSpace(r.FormValue("message")),
	}
	if err := h.validate.Struct(req); err != nil {
		p := withNotice(h.page(r, "ConsultationTitle"), "ConsultationInvalid")
		h.render(w, r, http.StatusUnprocessableEntity, views.ConsultationPage(p, req))
		return
	}
	slog.Info("consultation requested",
		"user_id", id.User.ID,
		"email", id.User.Email,
		"topic", req.Topic,
		"preferred_date", req.PreferredDate,
	)
	h.redirect(w, r, "/dashboard", "ConsultationSent")
}
