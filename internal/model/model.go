package model

import (
	"context"
	"time"
)

// Role is a named permission held by a user (rows of user_roles).
type Role string

const (
	// RoleAdmin may manage career guides and view assessment statistics.
	RoleAdmin Role = "admin"
	// RoleMember is granted to every signed-up user.
	RoleMember Role = "member"
)

// User represents an account known to the auth collaborator.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile holds the public display data of a user.
type Profile struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AssessmentType identifies an assessment variant. It doubles as the target
// audience of career guides.
type AssessmentType string

const (
	AssessmentFreshGraduate AssessmentType = "fresh_graduate"
	AssessmentCareerSwitch  AssessmentType = "career_switch"
)

// AssessmentTypes lists the known variants in display order.
var AssessmentTypes = []AssessmentType{AssessmentFreshGraduate, AssessmentCareerSwitch}

// Valid reports whether t is one of the known variants.
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentFreshGraduate, AssessmentCareerSwitch:
		return true
	}
	return false
}

// Label returns the human readable name of the variant.
func (t AssessmentType) Label() string {
	switch t {
	case AssessmentFreshGraduate:
		return "Fresh Graduate"
	case AssessmentCareerSwitch:
		return "Career Switch"
	}
	return string(t)
}

// Audience is the target audience of a career guide.
type Audience = AssessmentType

// AssessmentRecord is one completed, submitted assessment.
type AssessmentRecord struct {
	ID              string         `json:"id"`
	UserID          *string        `json:"user_id,omitempty"`
	Email           string         `json:"email"`
	AssessmentType  AssessmentType `json:"assessment_type"`
	Answers         map[string]int `json:"answers"`
	Score           float64        `json:"score"`
	Recommendations string         `json:"recommendations"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Category classifies a career guide.
type Category string

const (
	CategoryTips     Category = "tips"
	CategoryGuide    Category = "panduan"
	CategoryStrategy Category = "strategi"
	CategorySkill    Category = "skill"
)

// Categories lists the known guide categories in display order.
var Categories = []Category{CategoryTips, CategoryGuide, CategoryStrategy, CategorySkill}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryTips:
		return "Tips"
	case CategoryGuide:
		return "Panduan"
	case CategoryStrategy:
		return "Strategi"
	case CategorySkill:
		return "Skill Development"
	}
	return string(c)
}

// CareerGuide is an administrator-authored article.
type CareerGuide struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       Category  `json:"category"`
	TargetAudience Audience  `json:"target_audience"`
	ImagePath      string    `json:"image_url,omitempty"`
	AuthorID       string    `json:"author_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// GuideView combines a guide with its author profile and resolved image URL for display.
type GuideView struct {
	Guide    CareerGuide
	Author   *Profile
	ImageURL string
}

// SiteConfig holds runtime parameters set via CLI flags.
type SiteConfig struct {
	BasePath      string // URL prefix for sub-path deployments (e.g. "/karir")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	RateLimit     int    // Sign-in and submission POSTs per minute per client IP, 0 disables
	MetricsToken  string // Bearer token accepted on /metrics besides an admin session
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
