// Package views renders the server-side HTML pages.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/dharmapatha/portal/internal/assessment"
	"github.com/dharmapatha/portal/internal/auth"
	appI18n "github.com/dharmapatha/portal/internal/i18n"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

// notices maps every notice message ID to whether it reports a success.
var notices = map[string]bool{
	"LoginSuccess":          true,
	"LoggedOut":             true,
	"SignupSuccess":         true,
	"ContactSent":           true,
	"ConsultationSent":      true,
	"GuideCreated":          true,
	"GuideUpdated":          true,
	"GuideDeleted":          true,
	"LoginFailed":           false,
	"LoginRequired":         false,
	"PasswordMismatch":      false,
	"PasswordTooShort":      false,
	"EmailTaken":            false,
	"SignupInvalid":         false,
	"SignupFailed":          false,
	"AccessDenied":          false,
	"AnswerRequired":        false,
	"AssessmentIncomplete":  false,
	"EmailRequired":         false,
	"AssessmentSaveFailed":  false,
	"SubmitRateLimited":     false,
	"ContactInvalid":        false,
	"ConsultationInvalid":   false,
	"GuideInvalid":          false,
	"GuideSaveFailed":       false,
	"GuideDeleteFailed":     false,
	"GuidesLoadFailed":      false,
	"ImageInvalid":          false,
	"ImageUploadFailed":     false,
	"AssessmentsLoadFailed": false,
	"ArticleLoadFailed":     false,
}

// KnownNotice reports whether id names a notice message. Notices arrive in
// query strings, so anything else is dropped.
func KnownNotice(id string) bool {
	_, ok := notices[id]
	return ok
}

// Page carries what every page renders around its content.
type Page struct {
	Title    string
	Identity *auth.Identity
	Notice   string
}

// NoticeOK reports whether the notice is a success message.
func (p Page) NoticeOK() bool { return notices[p.Notice] }

var tierMessages = map[assessment.Tier]string{
	assessment.TierExcellent:  "TierExcellent",
	assessment.TierGood:       "TierGood",
	assessment.TierNeedsWork:  "TierNeedsWork",
	assessment.TierEarlyStage: "TierEarlyStage",
}

var staticFuncs = template.FuncMap{
	"score": formatScore,
	"date":  formatDate,
	"percent": func(part, total int) int {
		return stats.Percent(part, total)
	},
	"add": func(a, b int) int { return a + b },
	"tier": func(score float64) string {
		return tierMessages[assessment.SelectTier(score)]
	},
	"year": func() int { return time.Now().Year() },
	// Bound per request in render.
	"T":    func(string) string { return "" },
	"Td":   func(string, ...any) string { return "" },
	"Tp":   func(string, int) string { return "" },
	"path": func(string) string { return "" },
	"csrf": func() string { return "" },
}

var base = template.Must(template.New("views").Funcs(staticFuncs).ParseFS(templateFS, "templates/*.html"))

func requestFuncs(ctx context.Context) template.FuncMap {
	bp := model.BasePathFromContext(ctx)
	return template.FuncMap{
		"T": func(id string) string { return appI18n.T(ctx, id) },
		"Td": func(id string, kv ...any) string {
			data := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					data[k] = kv[i+1]
				}
			}
			return appI18n.Td(ctx, id, data)
		},
		"Tp":   func(id string, n int) string { return appI18n.Tp(ctx, id, n) },
		"path": func(p string) string { return bp + p },
		"csrf": func() string { return model.CSRFTokenFromContext(ctx) },
	}
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, err := base.Clone()
		if err != nil {
			return err
		}
		return t.Funcs(requestFuncs(ctx)).ExecuteTemplate(w, name, data)
	})
}

func formatScore(s float64) string {
	return strconv.FormatFloat(math.Round(s*10)/10, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return stats.DayLabel(t) + " " + strconv.Itoa(t.Year())
}
