package model

import "time"

// AssessmentExport is the top-level JSON structure for the assessment export.
type AssessmentExport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Total       int                `json:"total"`
	Statistics  Statistics         `json:"statistics"`
	Results     []AssessmentResult `json:"results"`
}

// AssessmentResult holds one submitted assessment for export.
type AssessmentResult struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	FullName        string         `json:"full_name,omitempty"`
	AssessmentType  AssessmentType `json:"assessment_type"`
	Score           float64        `json:"score"`
	Answers         map[string]int `json:"answers"`
	Recommendations string         `json:"recommendations"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Statistics summarises a collection of assessment records for admin reporting.
type Statistics struct {
	Total             int          `json:"total"`
	AvgScore          float64      `json:"avgScore"`
	FreshGradCount    int          `json:"freshGradCount"`
	CareerSwitchCount int          `json:"careerSwitchCount"`
	ScoreDistribution []Bucket     `json:"scoreDistribution"`
	DailyStats        []DailyCount `json:"dailyStats"`
}

// Bucket is one score range of the distribution histogram.
type Bucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// DailyCount is the number of submissions on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}
