package model

// ContactMessage is a message sent through the public contact form.
type ContactMessage struct {
	Name    string `validate:"required,max=200"`
	Email   string `validate:"required,email"`
	Subject string `validate:"required,max=200"`
	Message string `validate:"required,max=5000"`
}

// ConsultationTopics lists the topics a member can book a consultation on.
var ConsultationTopics = []string{
	"Tes Minat & Kepribadian",
	"Persiapan Wawancara",
	"Rencana Switch Career",
	"CV & Portfolio Review",
	"Strategi Job Hunting",
	"Pengembangan Skill",
	"Lainnya",
}

// ConsultationRequest is a member's request for a consultation session.
type ConsultationRequest struct {
	Topic         string `validate:"required,consultation_topic"`
	PreferredDate string `validate:"omitempty,datetime=2006-01-02"`
	Message       string `validate:"max=2000"`
}

// SignupForm holds the fields of the sign-up form.
type SignupForm struct {
	FullName        string `validate:"required,max=200"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

// GuideForm holds the editable fields of a career guide.
type GuideForm struct {
	Title          string   `validate:"required,max=300"`
	Description    string   `validate:"required"`
	Category       Category `validate:"required,guide_category"`
	TargetAudience Audience `validate:"required,assessment_type"`
}
