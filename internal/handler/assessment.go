package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dharmapatha/portal/internal/assessment"
	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/handler/views"
	"github.com/dharmapatha/portal/internal/model"
)

// answerField is the form field prefix carrying the answer of a question.
const answerField = "a_"

func assessmentPath(variant model.AssessmentType) string {
	if variant == model.AssessmentCareerSwitch {
		return "/assessment/careerswitch"
	}
	return "/assessment/freshgrad"
}

func (h *Handler) handleAssessmentPage(variant model.AssessmentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := assessment.ForVariant(variant)
		if err != nil {
			h.handleNotFound(w, r)
			return
		}
		flow := assessment.NewFlow(set)
		h.renderStep(w, r, http.StatusOK, h.page(r, ""), flow, "")
	}
}

// handleAssessmentStep advances the flow by one action. The flow state lives
// in the form: the current step index and one field per recorded answer.
func (h *Handler) handleAssessmentStep(variant model.AssessmentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := assessment.ForVariant(variant)
		if err != nil {
			h.handleNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		step, _ := strconv.Atoi(r.PostFormValue("step"))
		answers := assessment.AnswerSet{}
		for _, q := range set.Questions {
			raw := r.PostFormValue(answerField + q.ID)
			if raw == "" {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "invalid answer", http.StatusBadRequest)
				return
			}
			answers[q.ID] = v
		}
		flow, err := assessment.Restore(set, step, answers)
		if err != nil {
			slog.Warn("rejected assessment form", "variant", variant, "error", err)
			http.Error(w, "invalid answer", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.PostFormValue("email"))
		p := h.page(r, "")

		switch r.PostFormValue("action") {
		case "prev":
			_ = flow.Previous()
			h.renderStep(w, r, http.StatusOK, p, flow, email)
		case "next":
			if err := flow.Next(); err != nil {
				h.renderStep(w, r, http.StatusUnprocessableEntity, withNotice(p, "AnswerRequired"), flow, email)
				return
			}
			h.renderStep(w, r, http.StatusOK, p, flow, email)
		case "submit":
			h.submitAssessment(w, r, p, flow, email)
		default:
			h.renderStep(w, r, http.StatusOK, p, flow, email)
		}
	}
}

func (h *Handler) submitAssessment(w http.ResponseWriter, r *http.Request, p views.Page, flow *assessment.Flow, email string) {
	ctx := r.Context()
	if !h.submits.Allow(r) {
		w.Header().Set("Retry-After", retryAfter)
		h.renderStep(w, r, http.StatusTooManyRequests, withNotice(p, "SubmitRateLimited"), flow, email)
		return
	}
	id := auth.FromContext(ctx)
	var userID *string
	if id != nil {
		uid := id.User.ID
		userID = &uid
		email = id.User.Email
	} else if err := h.validate.Var(email, "required,email"); err != nil {
		h.renderStep(w, r, http.StatusUnprocessableEntity, withNotice(p, "EmailRequired"), flow, email)
		return
	}

	res, err := flow.Submit()
	if err != nil {
		notice := "AssessmentIncomplete"
		if errors.Is(err, assessment.ErrNotLastQuestion) {
			notice = "AnswerRequired"
		}
		h.renderStep(w, r, http.StatusUnprocessableEntity, withNotice(p, notice), flow, email)
		return
	}

	variant := flow.Set().Variant
	rec, err := h.store.InsertAssessment(ctx, model.AssessmentRecord{
		UserID:          userID,
		Email:           email,
		AssessmentType:  variant,
		Answers:         flow.Answers(),
		Score:           res.Score,
		Recommendations: res.Recommendations,
	})
	if err != nil {
		slog.Error("failed to store assessment", "variant", variant, "email", email, "error", err)
		_ = flow.Fail()
		h.renderStep(w, r, http.StatusInternalServerError, withNotice(p, "AssessmentSaveFailed"), flow, email)
		return
	}
	_ = flow.Succeed()
	h.metrics.AssessmentSubmitted(string(variant))
	slog.Info("assessment submitted", "id", rec.ID, "variant", variant, "score", res.Score, "tier", res.Tier)

	h.render(w, r, http.StatusOK, views.ResultPage(p, variant, res, h.path(assessmentPath(variant))))
}

func (h *Handler) renderStep(w http.ResponseWriter, r *http.Request, status int, p views.Page, flow *assessment.Flow, email string) {
	current := flow.Current()
	step := views.Step{
		Flow:     flow,
		Action:   h.path(assessmentPath(flow.Set().Variant)),
		Email:    email,
		AskEmail: auth.FromContext(r.Context()) == nil,
	}
	step.Selected, _ = flow.AnswerFor(current.ID)
	for _, q := range flow.Set().Questions {
		if q.ID == current.ID {
			continue
		}
		if v, ok := flow.AnswerFor(q.ID); ok {
			step.Remaining = append(step.Remaining, views.HiddenAnswer{ID: q.ID, Value: v})
		}
	}
	h.render(w, r, status, views.AssessmentPage(p, step))
}
