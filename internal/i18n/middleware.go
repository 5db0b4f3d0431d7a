package i18n

import "net/http"

// Middleware serves every request in lang. The site has a single locale, so
// Accept-Language is ignored; the response announces the language through
// Content-Language so pages and redirects carry it alike.
func Middleware(lang string) func(http.Handler) http.Handler {
	loc := NewLocalizer(lang)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
