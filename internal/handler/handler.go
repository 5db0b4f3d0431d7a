package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/handler/views"
	"github.com/dharmapatha/portal/internal/media"
	"github.com/dharmapatha/portal/internal/metrics"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/store"
)

// homeGuideCount is the number of latest guides shown on the home page.
const homeGuideCount = 3

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	media    media.Store
	metrics  *metrics.Metrics
	limiter  *RateLimiter // sign-in and sign-up
	submits  *RateLimiter // assessment submissions only, not question steps
	validate *validator.Validate
	config   model.SiteConfig
	now      func() time.Time
}

// New creates a new Handler.
func New(s *store.Store, m media.Store, mt *metrics.Metrics, cfg model.SiteConfig) *Handler {
	return &Handler{
		store:    s,
		media:    m,
		metrics:  mt,
		limiter:  NewRateLimiter(cfg.RateLimit),
		submits:  NewRateLimiter(cfg.RateLimit),
		validate: newValidator(),
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Routes registers the middleware chain and all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.metrics.Middleware)
	r.Use(middleware.RequestSize(media.MaxImageSize + 1<<20))
	r.Use(h.csrfMiddleware)
	r.Use(h.identityMiddleware)

	r.Get("/", h.handleHome)
	r.Get("/tentang", h.handleAbout)
	r.Get("/freshgraduate", h.handleGuides(model.AssessmentFreshGraduate))
	r.Get("/switch-career", h.handleGuides(model.AssessmentCareerSwitch))
	r.Get("/artikel/{guideID}", h.handleArticle)
	r.Get("/kontak", h.handleContactPage)
	r.Post("/kontak", h.handleContact)
	r.Get("/healthz", h.handleHealthz)
	r.With(h.metricsAccess).Handle("/metrics", h.metrics.Handler())
	if l, ok := h.media.(*media.Local); ok {
		r.Handle("/media/*", h.mediaFiles(l.Dir()))
	}

	r.Get("/auth", h.handleAuthPage)
	r.With(h.limiter.Middleware).Post("/auth/login", h.handleLogin)
	r.With(h.limiter.Middleware).Post("/auth/signup", h.handleSignup)
	r.Post("/auth/logout", h.handleLogout)

	for _, variant := range model.AssessmentTypes {
		p := assessmentPath(variant)
		r.Get(p, h.handleAssessmentPage(variant))
		r.Post(p, h.handleAssessmentStep(variant))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/konsultasi", h.handleConsultationPage)
		r.Post("/konsultasi", h.handleConsultation)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireRole(model.RoleAdmin))
		r.Get("/assessments", h.handleAdminAssessments)
		r.Get("/assessments/stats", h.handleAdminStats)
		r.Get("/career-guides", h.handleAdminGuides)
		r.Post("/career-guides", h.handleCreateGuide)
		r.Get("/career-guides/{guideID}/edit", h.handleEditGuide)
		r.Post("/career-guides/{guideID}", h.handleUpdateGuide)
		r.Post("/career-guides/{guideID}/delete", h.handleDeleteGuide)
	})

	r.NotFound(h.handleNotFound)
}

// Start runs background maintenance until ctx is done: idle rate limiter
// entries and expired sessions are purged.
func (h *Handler) Start(ctx context.Context) {
	go h.limiter.Run(ctx)
	go h.submits.Run(ctx)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := h.store.CleanupExpiredSessions(ctx)
				if err != nil {
					slog.Error("failed to clean up sessions", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("removed expired sessions", "count", n)
				}
			}
		}
	}()
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// path prefixes p with the base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

// page builds the common page data. A notice is taken from the query string
// when it names a known message.
func (h *Handler) page(r *http.Request, title string) views.Page {
	p := views.Page{Title: title, Identity: auth.FromContext(r.Context())}
	if n := r.URL.Query().Get("notice"); views.KnownNotice(n) {
		p.Notice = n
	}
	return p
}

func withNotice(p views.Page, notice string) views.Page {
	p.Notice = notice
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// redirect sends the browser to p (without base path) carrying a notice.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, p, notice string) {
	target := h.path(p)
	if notice != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "notice=" + notice
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// guideViews attaches author profiles and display URLs to guides.
func (h *Handler) guideViews(ctx context.Context, guides []model.CareerGuide) []model.GuideView {
	authors := make(map[string]*model.Profile)
	out := make([]model.GuideView, 0, len(guides))
	for _, g := range guides {
		p, seen := authors[g.AuthorID]
		if !seen {
			var err error
			p, err = h.store.GetProfile(ctx, g.AuthorID)
			if err != nil {
				slog.Warn("failed to load guide author", "author_id", g.AuthorID, "error", err)
			}
			authors[g.AuthorID] = p
		}
		out = append(out, model.GuideView{Guide: g, Author: p, ImageURL: media.Resolve(h.media, g.ImagePath)})
	}
	return out
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "")
	guides, err := h.store.ListGuides(r.Context())
	if err != nil {
		slog.Error("failed to list guides", "error", err)
		p = withNotice(p, "GuidesLoadFailed")
	}
	if len(guides) > homeGuideCount {
		guides = guides[:homeGuideCount]
	}
	h.render(w, r, http.StatusOK, views.HomePage(p, h.guideViews(r.Context(), guides)))
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.AboutPage(h.page(r, "AboutTitle")))
}

func (h *Handler) handleGuides(audience model.Audience) http.HandlerFunc {
	title := "FreshGraduateTitle"
	if audience == model.AssessmentCareerSwitch {
		title = "SwitchCareerTitle"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p := h.page(r, title)
		status := http.StatusOK
		guides, err := h.store.ListGuidesByAudience(r.Context(), audience)
		if err != nil {
			slog.Error("failed to list guides", "audience", audience, "error", err)
			p = withNotice(p, "GuidesLoadFailed")
			status = http.StatusInternalServerError
		}
		h.render(w, r, status, views.GuidesPage(p, audience, h.path(assessmentPath(audience)), h.guideViews(r.Context(), guides)))
	}
}

func (h *Handler) handleArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "guideID")
	g, err := h.store.GetGuide(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, views.NotFoundPage(h.page(r, "NotFoundTitle"), "ArticleNotFound", h.path("/")))
		return
	}
	if err != nil {
		slog.Error("failed to load guide", "id", id, "error", err)
		h.render(w, r, http.StatusInternalServerError, views.NotFoundPage(h.page(r, ""), "ArticleLoadFailed", h.path("/")))
		return
	}
	back := h.path("/freshgraduate")
	if g.TargetAudience == model.AssessmentCareerSwitch {
		back = h.path("/switch-career")
	}
	view := h.guideViews(r.Context(), []model.CareerGuide{g})[0]
	h.render(w, r, http.StatusOK, views.ArticlePage(h.page(r, ""), view, back))
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, views.NotFoundPage(h.page(r, "NotFoundTitle"), "NotFoundBody", h.path("/")))
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) handleContactPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.ContactPage(h.page(r, "ContactTitle"), model.ContactMessage{}))
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	msg := model.ContactMessage{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
	if err := h.validate.Struct(msg); err != nil {
		p := withNotice(h.page(r, "ContactTitle"), "ContactInvalid")
		h.render(w, r, http.StatusUnprocessableEntity, views.ContactPage(p, msg))
		return
	}
	slog.Info("contact message received", "email", msg.Email, "subject", msg.Subject)
	h.redirect(w, r, "/kontak", "ContactSent")
}

// mediaFiles serves locally stored images. Directory listings are refused.
func (h *Handler) mediaFiles(dir string) http.Handler {
	fs := http.StripPrefix(h.path("/media/"), http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			h.handleNotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fs.ServeHTTP(w, r)
	})
}
