package views

import (
	"github.com/a-h/templ"

	"github.com/dharmapatha/portal/internal/assessment"
	"github.com/dharmapatha/portal/internal/model"
)

func HomePage(p Page, latest []model.GuideView) templ.Component {
	return render("home", struct {
		Page
		Guides []model.GuideView
	}{p, latest})
}

func AboutPage(p Page) templ.Component {
	return render("about", struct{ Page }{p})
}

// GuidesPage lists the guides written for one audience together with the
// entry point of its assessment.
func GuidesPage(p Page, audience model.Audience, assessmentPath string, guides []model.GuideView) templ.Component {
	intro := "FreshGraduateIntro"
	if audience == model.AssessmentCareerSwitch {
		intro = "SwitchCareerIntro"
	}
	return render("guides", struct {
		Page
		Audience       model.Audience
		Intro          string
		AssessmentPath string
		Guides         []model.GuideView
	}{p, audience, intro, assessmentPath, guides})
}

func ArticlePage(p Page, g model.GuideView, back string) templ.Component {
	return render("article", struct {
		Page
		Guide model.GuideView
		Back  string
	}{p, g, back})
}

// NotFoundPage renders the not-found screen with message and a link back.
func NotFoundPage(p Page, message, back string) templ.Component {
	return render("notfound", struct {
		Page
		Message string
		Back    string
	}{p, message, back})
}

func ContactPage(p Page, form model.ContactMessage) templ.Component {
	return render("contact", struct {
		Page
		Form model.ContactMessage
	}{p, form})
}

func ConsultationPage(p Page, form model.ConsultationRequest) templ.Component {
	return render("consultation", struct {
		Page
		Form   model.ConsultationRequest
		Topics []string
	}{p, form, model.ConsultationTopics})
}

// AuthPage renders the sign-in and sign-up forms. tab selects the form shown
// first ("login" or "signup").
func AuthPage(p Page, tab, email, fullName string) templ.Component {
	return render("auth", struct {
		Page
		Tab      string
		Email    string
		FullName string
	}{p, tab, email, fullName})
}

func DashboardPage(p Page, history []model.AssessmentRecord) templ.Component {
	return render("dashboard", struct {
		Page
		History []model.AssessmentRecord
	}{p, history})
}

// Step is one rendered question of an assessment flow.
type Step struct {
	Flow      *assessment.Flow
	Action    string
	Email     string
	AskEmail  bool
	Selected  int
	Remaining []HiddenAnswer
}

// HiddenAnswer is an answer carried between steps in a hidden field.
type HiddenAnswer struct {
	ID    string
	Value int
}

func AssessmentPage(p Page, s Step) templ.Component {
	return render("assessment", struct {
		Page
		Step
	}{p, s})
}

func ResultPage(p Page, variant model.AssessmentType, res assessment.Result, retake string) templ.Component {
	return render("result", struct {
		Page
		Variant model.AssessmentType
		Result  assessment.Result
		Retake  string
	}{p, variant, res, retake})
}

func AdminAssessmentsPage(p Page, records []model.AssessmentRecord, st model.Statistics) templ.Component {
	return render("admin_assessments", struct {
		Page
		Records []model.AssessmentRecord
		Stats   model.Statistics
	}{p, records, st})
}

// GuideEditor is the state of the guide form on the admin screen.
type GuideEditor struct {
	ID       string
	Form     model.GuideForm
	ImageURL string
}

func AdminGuidesPage(p Page, guides []model.GuideView, editor GuideEditor) templ.Component {
	return render("admin_guides", struct {
		Page
		Guides     []model.GuideView
		Editor     GuideEditor
		Categories []model.Category
		Audiences  []model.AssessmentType
	}{p, guides, editor, model.Categories, model.AssessmentTypes})
}
