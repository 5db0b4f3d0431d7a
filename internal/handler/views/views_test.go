package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/dharmapatha/portal/internal/assessment"
	"github.com/dharmapatha/portal/internal/auth"
	appI18n "github.com/dharmapatha/portal/internal/i18n"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/stats"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	if err := appI18n.Init(appI18n.DefaultLang); err != nil {
		t.Fatalf("i18n init: %v", err)
	}
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(appI18n.DefaultLang))
	ctx = model.ContextWithBasePath(ctx, "/karir")
	return model.ContextWithCSRFToken(ctx, "tok123")
}

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func admin() *auth.Identity {
	return auth.NewIdentity(
		model.User{ID: "u1", Email: "admin@example.com"},
		model.Profile{UserID: "u1", FullName: "Admin Satu"},
		[]model.Role{model.RoleMember, model.RoleAdmin},
	)
}

func TestPagesRender(t *testing.T) {
	ctx := testContext(t)
	now := time.Date(2024, 10, 2, 9, 0, 0, 0, time.UTC)
	guide := model.GuideView{
		Guide: model.CareerGuide{
			ID: "g1", Title: "Menulis CV", Description: "Baris satu\nBaris dua",
			Category: model.CategoryTips, TargetAudience: model.AssessmentFreshGraduate, CreatedAt: now,
		},
		Author:   &model.Profile{FullName: "Admin Satu"},
		ImageURL: "/karir/media/a.png",
	}
	records := []model.AssessmentRecord{
		{ID: "r1", Email: "x@example.com", AssessmentType: model.AssessmentCareerSwitch, Score: 62.5, CreatedAt: now},
	}
	flow := assessment.NewFlow(assessment.FreshGraduate())

	tests := []struct {
		name string
		c    templ.Component
		want []string
	}{
		{"home", HomePage(Page{}, []model.GuideView{guide}), []string{"Menulis CV", `href="/karir/artikel/g1"`}},
		{"about", AboutPage(Page{Title: "AboutTitle"}), []string{"Tentang Dharmapatha"}},
		{"guides", GuidesPage(Page{Title: "FreshGraduateTitle"}, model.AssessmentFreshGraduate, "/karir/assessment/freshgrad", nil),
			[]string{"Belum ada artikel", "/karir/assessment/freshgrad"}},
		{"article", ArticlePage(Page{}, guide, "/karir/freshgraduate"), []string{"Oleh Admin Satu", "02 Okt 2024"}},
		{"not found", NotFoundPage(Page{}, "ArticleNotFound", "/karir/"), []string{"Artikel tidak ditemukan"}},
		{"contact", ContactPage(Page{Notice: "ContactInvalid"}, model.ContactMessage{Name: "Ana"}),
			[]string{`value="Ana"`, `class="notice err"`, `value="tok123"`}},
		{"consultation", ConsultationPage(Page{Identity: admin()}, model.ConsultationRequest{Topic: "Lainnya"}),
			[]string{`value="Lainnya" selected`}},
		{"auth", AuthPage(Page{Notice: "SignupSuccess"}, "login", "a@example.com", ""),
			[]string{`class="notice ok"`, `/karir/auth/login`}},
		{"dashboard", DashboardPage(Page{Identity: admin()}, records),
			[]string{"Selamat datang, Admin Satu!", "62.5", "Baik", "/karir/admin/assessments"}},
		{"assessment", AssessmentPage(Page{}, Step{Flow: flow, Action: "/karir/assessment/freshgrad", AskEmail: true}),
			[]string{`name="step" value="0"`, `value="next"`}},
		{"result", ResultPage(Page{}, model.AssessmentFreshGraduate, assessment.Result{
			Score: 100, Tier: assessment.TierExcellent, Recommendations: "Luar biasa",
		}, "/karir/assessment/freshgrad"), []string{`<span id="score">100</span>`, "Sangat Baik", "Luar biasa"}},
		{"admin assessments", AdminAssessmentsPage(Page{Identity: admin()}, records, stats.Aggregate(records, now)),
			[]string{`<p id="stat-total">1</p>`, "60-80", "x@example.com", "window.assessmentStats"}},
		{"admin guides", AdminGuidesPage(Page{Identity: admin()}, []model.GuideView{guide}, GuideEditor{
			ID: "g1", Form: model.GuideForm{Title: "Menulis CV", Category: model.CategoryTips, TargetAudience: model.AssessmentFreshGraduate},
		}), []string{`action="/karir/admin/career-guides/g1"`, `value="tips" selected`, "/karir/admin/career-guides/g1/delete"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderString(t, ctx, tt.c)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q", w)
				}
			}
		})
	}
}

func TestNavigationReflectsIdentity(t *testing.T) {
	ctx := testContext(t)

	anon := renderString(t, ctx, AboutPage(Page{}))
	if !strings.Contains(anon, "/karir/auth") || strings.Contains(anon, "/karir/auth/logout") {
		t.Error("anonymous navigation should offer login only")
	}

	member := auth.NewIdentity(model.User{ID: "m"}, model.Profile{FullName: "M"}, []model.Role{model.RoleMember})
	out := renderString(t, ctx, AboutPage(Page{Identity: member}))
	if !strings.Contains(out, "/karir/auth/logout") {
		t.Error("signed-in navigation should offer logout")
	}
	if strings.Contains(out, "/karir/admin/") {
		t.Error("member navigation should not link admin screens")
	}
}

func TestKnownNotice(t *testing.T) {
	if !KnownNotice("AccessDenied") {
		t.Error("AccessDenied should be known")
	}
	if KnownNotice("<script>") {
		t.Error("arbitrary notices must be rejected")
	}
	if (Page{Notice: "GuideCreated"}).NoticeOK() != true {
		t.Error("GuideCreated is a success notice")
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{87.5, "87.5"},
		{66.666, "66.7"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatScore(tt.in); got != tt.want {
			t.Errorf("formatScore(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
