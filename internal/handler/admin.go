package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/handler/views"
	"github.com/dharmapatha/portal/internal/media"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/stats"
	"github.com/dharmapatha/portal/internal/store"
)

// errNoImage means the guide form carried no image file.
var errNoImage = errors.New("no image uploaded")

func (h *Handler) handleAdminAssessments(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "AdminAssessmentsTitle")
	status := http.StatusOK
	records, err := h.store.ListAssessments(r.Context())
	if err != nil {
		slog.Error("failed to list assessments", "error", err)
		p = withNotice(p, "AssessmentsLoadFailed")
		status = http.StatusInternalServerError
	}
	st := stats.Aggregate(records, h.now())
	h.render(w, r, status, views.AdminAssessmentsPage(p, records, st))
}

// handleAdminStats returns the assessment statistics as JSON for charting.
func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAssessments(r.Context())
	if err != nil {
		slog.Error("failed to list assessments", "error", err)
		http.Error(w, "failed to load assessments", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats.Aggregate(records, h.now())); err != nil {
		slog.Error("failed to encode statistics", "error", err)
	}
}

func (h *Handler) handleAdminGuides(w http.ResponseWriter, r *http.Request) {
	editor := views.GuideEditor{Form: model.GuideForm{
		Category:       model.CategoryTips,
		TargetAudience: model.AssessmentFreshGraduate,
	}}
	h.renderGuides(w, r, http.StatusOK, h.page(r, "AdminGuidesTitle"), editor)
}

func (h *Handler) renderGuides(w http.ResponseWriter, r *http.Request, status int, p views.Page, editor views.GuideEditor) {
	guides, err := h.store.ListGuides(r.Context())
	if err != nil {
		slog.Error("failed to list guides", "error", err)
		p = withNotice(p, "GuidesLoadFailed")
		status = http.StatusInternalServerError
	}
	h.render(w, r, status, views.AdminGuidesPage(p, h.guideViews(r.Context(), guides), editor))
}

func guideForm(r *http.Request) model.GuideForm {
	return model.GuideForm{
		Title:          strings.TrimSpace(r.FormValue("title")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Category:       model.Category(r.FormValue("category")),
		TargetAudience: model.Audience(r.FormValue("target_audience")),
	}
}

// storeImage saves the uploaded image, if any, and returns its stored path.
// The content type is sniffed from the file itself.
func (h *Handler) storeImage(ctx context.Context, r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", errNoImage
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if err := media.ValidateImage(contentType, header.Size); err != nil {
		return "", err
	}
	// The extension follows the sniffed type, not the client's file name.
	name := media.NewObjectName(header.Filename)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + media.ExtensionFor(contentType)
	slog.Debug("storing image", "upload", header.Filename, "object", name, "type", contentType)
	return h.media.Put(ctx, name, br, header.Size, contentType)
}

// imageFailure renders the guide form for an image that could not be stored.
func (h *Handler) imageFailure(w http.ResponseWriter, r *http.Request, editor views.GuideEditor, err error) {
	p := h.page(r, "AdminGuidesTitle")
	if errors.Is(err, media.ErrUnsupportedType) || errors.Is(err, media.ErrTooLarge) {
		h.renderGuides(w, r, http.StatusUnprocessableEntity, withNotice(p, "ImageInvalid"), editor)
		return
	}
	slog.Error("failed to upload image", "error", err)
	h.renderGuides(w, r, http.StatusInternalServerError, withNotice(p, "ImageUploadFailed"), editor)
}

func (h *Handler) discardImage(ctx context.Context, path string) {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return
	}
	if err := h.media.Delete(ctx, path); err != nil {
		slog.Warn("failed to delete image", "path", path, "error", err)
	}
}

func (h *Handler) handleCreateGuide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := guideForm(r)
	editor := views.GuideEditor{Form: form}
	if err := h.validate.Struct(form); err != nil {
		slog.Debug("guide validation failed", "fields", failedFields(err))
		p := withNotice(h.page(r, "AdminGuidesTitle"), "GuideInvalid")
		h.renderGuides(w, r, http.StatusUnprocessableEntity, p, editor)
		return
	}

	imagePath, err := h.storeImage(ctx, r)
	if err != nil && !errors.Is(err, errNoImage) {
		h.imageFailure(w, r, editor, err)
		return
	}

	g, err := h.store.CreateGuide(ctx, model.CareerGuide{
		Title:          form.Title,
		Description:    form.Description,
		Category:       form.Category,
		TargetAudience: form.TargetAudience,
		ImagePath:      imagePath,
		AuthorID:       auth.FromContext(ctx).User.ID,
	})
	if err != nil {
		slog.Error("failed to create guide", "error", err)
		h.discardImage(ctx, imagePath)
		p := withNotice(h.page(r, "AdminGuidesTitle"), "GuideSaveFailed")
		h.renderGuides(w, r, http.StatusInternalServerError, p, editor)
		return
	}
	h.metrics.GuideChanged("create")
	slog.Info("created guide", "id", g.ID, "title", g.Title)
	h.redirect(w, r, "/admin/career-guides", "GuideCreated")
}

func (h *Handler) handleEditGuide(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGuide(w, r)
	if !ok {
		return
	}
	editor := views.GuideEditor{
		ID: g.ID,
		Form: model.GuideForm{
			Title:          g.Title,
			Description:    g.Description,
			Category:       g.Category,
			TargetAudience: g.TargetAudience,
		},
		ImageURL: media.Resolve(h.media, g.ImagePath),
	}
	h.renderGuides(w, r, http.StatusOK, h.page(r, "EditGuide"), editor)
}

func (h *Handler) handleUpdateGuide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, ok := h.loadGuide(w, r)
	if !ok {
		return
	}
	form := guideForm(r)
	editor := views.GuideEditor{ID: g.ID, Form: form, ImageURL: media.Resolve(h.media, g.ImagePath)}
	if err := h.validate.Struct(form); err != nil {
		p := withNotice(h.page(r, "EditGuide"), "GuideInvalid")
		h.renderGuides(w, r, http.StatusUnprocessableEntity, p, editor)
		return
	}

	imagePath, err := h.storeImage(ctx, r)
	switch {
	case errors.Is(err, errNoImage):
		imagePath = g.ImagePath
	case err != nil:
		h.imageFailure(w, r, editor, err)
		return
	}

	oldImage := g.ImagePath
	g.Title = form.Title
	g.Description = form.Description
	g.Category = form.Category
	g.TargetAudience = form.TargetAudience
	g.ImagePath = imagePath
	if err := h.store.UpdateGuide(ctx, g); err != nil {
		if imagePath != oldImage {
			h.discardImage(ctx, imagePath)
		}
		if errors.Is(err, store.ErrNotFound) {
			h.handleNotFound(w, r)
			return
		}
		slog.Error("failed to update guide", "id", g.ID, "error", err)
		h.renderGuides(w, r, http.StatusInternalServerError, withNotice(h.page(r, "EditGuide"), "GuideSaveFailed"), editor)
		return
	}
	if imagePath != oldImage {
		h.discardImage(ctx, oldImage)
	}
	h.metrics.GuideChanged("update")
	slog.Info("updated guide", "id", g.ID)
	h.redirect(w, r, "/admin/career-guides", "GuideUpdated")
}

func (h *Handler) handleDeleteGuide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "guideID")
	g, err := h.store.GetGuide(ctx, id)
	if err == nil {
		err = h.store.DeleteGuide(ctx, id)
	}
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to delete guide", "id", id, "error", err)
		}
		h.redirect(w, r, "/admin/career-guides", "GuideDeleteFailed")
		return
	}
	h.discardImage(ctx, g.ImagePath)
	h.metrics.GuideChanged("delete")
	slog.Info("deleted guide", "id", id)
	h.redirect(w, r, "/admin/career-guides", "GuideDeleted")
}

// loadGuide fetches the guide named in the URL, rendering the not-found or
// failure page itself when it cannot.
func (h *Handler) loadGuide(w http.ResponseWriter, r *http.Request) (model.CareerGuide, bool) {
	id := chi.URLParam(r, "guideID")
	g, err := h.store.GetGuide(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, views.NotFoundPage(h.page(r, "NotFoundTitle"), "ArticleNotFound", h.path("/admin/career-guides")))
		return g, false
	}
	if err != nil {
		slog.Error("failed to load guide", "id", id, "error", err)
		h.render(w, r, http.StatusInternalServerError, views.NotFoundPage(h.page(r, ""), "ArticleLoadFailed", h.path("/admin/career-guides")))
		return g, false
	}
	return g, true
}
