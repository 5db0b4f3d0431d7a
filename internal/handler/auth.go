package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/handler/views"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/store"
)

const (
	sessionCookieName = "session"
	csrfCookieName    = "csrf_token"
)

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (h *Handler) setCSRFCookie(w http.ResponseWriter, r *http.Request, next http.Handler) {
	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: false,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	ctx := model.ContextWithCSRFToken(r.Context(), token)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// csrfMiddleware implements the double-submit cookie check on unsafe methods
// and rotates the token on every request.
func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" || r.Method == "HEAD" {
			h.setCSRFCookie(w, r, next)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			slog.Warn("CSRF cookie missing")
			http.Error(w, "csrf token missing", http.StatusForbidden)
			return
		}

		formToken := r.FormValue("csrf_token")
		if formToken == "" {
			slog.Warn("CSRF form token missing")
			http.Error(w, "csrf token missing", http.StatusForbidden)
			return
		}

		if len(formToken) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
			slog.Warn("CSRF token mismatch")
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		h.setCSRFCookie(w, r, next)
	})
}

// identityMiddleware resolves the session cookie into an auth.Identity with
// its roles. Visitors without a valid session continue anonymously.
func (h *Handler) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := h.resolveIdentity(r, cookie.Value)
		if err != nil {
			slog.Error("failed to resolve identity", "error", err)
		}
		if id == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func (h *Handler) resolveIdentity(r *http.Request, token string) (*auth.Identity, error) {
	ctx := r.Context()
	sess, err := h.store.GetAuthSession(ctx, token)
	if err != nil || sess == nil {
		return nil, err
	}
	user, err := h.store.GetUserByID(ctx, sess.UserID)
	if err != nil || user == nil {
		return nil, err
	}
	profile, err := h.store.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &model.Profile{UserID: user.ID}
	}
	roles, err := h.store.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return auth.NewIdentity(*user, *profile, roles), nil
}

// requireAuth sends anonymous visitors to the sign-in page.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			h.redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole returns middleware that admits only identities holding role.
// Signed-in users without it are sent to the dashboard with a denial notice.
func (h *Handler) requireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromContext(r.Context())
			switch auth.RequireRole(id, role) {
			case auth.Allowed:
				next.ServeHTTP(w, r)
			case auth.Unauthenticated:
				h.redirectToLogin(w, r)
			default:
				slog.Warn("access denied", "user_id", id.User.ID, "role", role, "path", r.URL.Path)
				h.redirect(w, r, "/dashboard", "AccessDenied")
			}
		})
	}
}

// metricsAccess admits scrapers presenting the configured bearer token and
// otherwise falls back to the admin role check.
func (h *Handler) metricsAccess(next http.Handler) http.Handler {
	admins := h.requireRole(model.RoleAdmin)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.config.MetricsToken != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok && subtle.ConstantTimeCompare([]byte(got), []byte(h.config.MetricsToken)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}
		admins.ServeHTTP(w, r)
	})
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	h.redirect(w, r, "/auth", "LoginRequired")
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
}

func (h *Handler) handleAuthPage(w http.ResponseWriter, r *http.Request) {
	if auth.FromContext(r.Context()) != nil {
		http.Redirect(w, r, h.path("/dashboard"), http.StatusSeeOther)
		return
	}
	tab := "login"
	if r.URL.Query().Get("tab") == "signup" {
		tab = "signup"
	}
	h.render(w, r, http.StatusOK, views.AuthPage(h.page(r, "AuthTitle"), tab, "", ""))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := store.NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		h.renderAuthError(w, r, http.StatusInternalServerError, "login", "LoginFailed", email, "")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		h.renderAuthError(w, r, http.StatusUnauthorized, "login", "LoginFailed", email, "")
		return
	}

	token, err := h.store.CreateAuthSession(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to create auth session", "error", err)
		h.renderAuthError(w, r, http.StatusInternalServerError, "login", "LoginFailed", email, "")
		return
	}
	h.setSessionCookie(w, token)
	slog.Info("user signed in", "user_id", user.ID)
	h.redirect(w, r, "/dashboard", "LoginSuccess")
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	form := model.SignupForm{
		FullName:        strings.TrimSpace(r.FormValue("full_name")),
		Email:           store.NormalizeEmail(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	fail := func(status int, notice string) {
		h.renderAuthError(w, r, status, "signup", notice, form.Email, form.FullName)
	}

	if err := h.validate.Struct(form); err != nil {
		slog.Debug("signup validation failed", "fields", failedFields(err))
		fail(http.StatusUnprocessableEntity, "SignupInvalid")
		return
	}
	if form.Password != form.ConfirmPassword {
		fail(http.StatusUnprocessableEntity, "PasswordMismatch")
		return
	}
	hash, err := auth.HashPassword(form.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		fail(http.StatusUnprocessableEntity, "PasswordTooShort")
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		fail(http.StatusInternalServerError, "SignupFailed")
		return
	}

	user, err := h.store.CreateUser(r.Context(), model.User{Email: form.Email, PasswordHash: hash}, form.FullName)
	if errors.Is(err, store.ErrEmailTaken) {
		fail(http.StatusConflict, "EmailTaken")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "email", form.Email, "error", err)
		fail(http.StatusInternalServerError, "SignupFailed")
		return
	}

	token, err := h.store.CreateAuthSession(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to create auth session", "error", err)
		h.redirect(w, r, "/auth", "SignupSuccess")
		return
	}
	h.setSessionCookie(w, token)
	h.redirect(w, r, "/dashboard", "SignupSuccess")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.store.DeleteAuthSession(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to delete auth session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	h.redirect(w, r, "/", "LoggedOut")
}

func (h *Handler) renderAuthError(w http.ResponseWriter, r *http.Request, status int, tab, notice, email, fullName string) {
	p := withNotice(h.page(r, "AuthTitle"), notice)
	h.render(w, r, status, views.AuthPage(p, tab, email, fullName))
}
