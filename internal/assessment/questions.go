// Package assessment implements the career readiness questionnaires: the fixed
// question sets, score computation, tiered recommendations and the step-by-step
// answering flow.
package assessment

import (
	"errors"
	"fmt"

	"github.com/dharmapatha/portal/internal/model"
)

// MaxOptionValue is the value of the most-ready answer of every question.
const MaxOptionValue = 4

var (
	// ErrIncomplete means not every question of the set has an answer.
	ErrIncomplete = errors.New("assessment: not all questions answered")
	// ErrUnknownQuestion means an answer refers to a question outside the set.
	ErrUnknownQuestion = errors.New("assessment: unknown question")
	// ErrInvalidValue means an answer value is outside 1..MaxOptionValue.
	ErrInvalidValue = errors.New("assessment: invalid answer value")
	// ErrUnknownVariant means no question set exists for the requested variant.
	ErrUnknownVariant = errors.New("assessment: unknown variant")
)

// Option is one selectable answer of a question.
type Option struct {
	Value int
	Label string
}

// Question is a single-choice question.
type Question struct {
	ID      string
	Prompt  string
	Options []Option
}

// QuestionSet is the ordered, immutable list of questions of one variant.
type QuestionSet struct {
	Variant   model.AssessmentType
	Title     string
	Questions []Question
}

// AnswerSet maps a question ID to the chosen option value.
type AnswerSet map[string]int

// Len returns the number of questions in the set.
func (qs QuestionSet) Len() int { return len(qs.Questions) }

// Question returns the question with the given ID.
func (qs QuestionSet) Question(id string) (Question, bool) {
	for _, q := range qs.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Validate checks that answers covers every question of the set with a valid value.
func (qs QuestionSet) Validate(answers AnswerSet) error {
	for id, v := range answers {
		if _, ok := qs.Question(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
		}
		if v < 1 || v > MaxOptionValue {
			return fmt.Errorf("%w: %s=%d", ErrInvalidValue, id, v)
		}
	}
	if len(answers) != len(qs.Questions) {
		return ErrIncomplete
	}
	return nil
}

// ForVariant returns the question set of the given variant.
func ForVariant(v model.AssessmentType) (QuestionSet, error) {
	switch v {
	case model.AssessmentFreshGraduate:
		return FreshGraduate(), nil
	case model.AssessmentCareerSwitch:
		return CareerSwitch(), nil
	}
	return QuestionSet{}, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
}

func options(labels ...string) []Option {
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Value: MaxOptionValue - i, Label: l}
	}
	return opts
}

// FreshGraduate returns the fresh-graduate readiness questionnaire.
func FreshGraduate() QuestionSet {
	return QuestionSet{
		Variant: model.AssessmentFreshGraduate,
		Title:   "Assessment Kesiapan Karir Fresh Graduate",
		Questions: []Question{
			{ID: "q1", Prompt: "Seberapa siap CV dan portfolio Anda?", Options: options(
				"Sangat siap, sudah profesional dan lengkap",
				"Cukup siap, ada beberapa yang perlu diperbaiki",
				"Belum siap, masih perlu banyak perbaikan",
				"Belum punya CV atau portfolio",
			)},
			{ID: "q2", Prompt: "Apakah Anda sudah memahami industri yang ingin Anda masuki?", Options: options(
				"Sangat memahami, sudah riset mendalam",
				"Cukup memahami dasar-dasarnya",
				"Belum terlalu memahami",
				"Sama sekali belum tahu",
			)},
			{ID: "q3", Prompt: "Berapa banyak lamaran yang sudah Anda kirim?", Options: options(
				"Lebih dari 20 lamaran",
				"10-20 lamaran",
				"1-10 lamaran",
				"Belum mengirim sama sekali",
			)},
			{ID: "q4", Prompt: "Seberapa percaya diri Anda dalam interview?", Options: options(
				"Sangat percaya diri, sudah latihan banyak",
				"Cukup percaya diri",
				"Kurang percaya diri",
				"Sangat tidak percaya diri",
			)},
			{ID: "q5", Prompt: "Apakah Anda punya koneksi atau network di industri target?", Options: options(
				"Ya, punya banyak koneksi",
				"Punya beberapa koneksi",
				"Sangat sedikit koneksi",
				"Tidak punya koneksi sama sekali",
			)},
			{ID: "q6", Prompt: "Apakah Anda sudah mengikuti training atau sertifikasi relevan?", Options: options(
				"Ya, sudah punya beberapa sertifikasi",
				"Sudah 1-2 sertifikasi",
				"Sedang dalam proses",
				"Belum sama sekali",
			)},
			{ID: "q7", Prompt: "Seberapa fleksibel Anda dengan lokasi dan gaji awal?", Options: options(
				"Sangat fleksibel, terbuka untuk berbagai pilihan",
				"Cukup fleksibel",
				"Kurang fleksibel",
				"Sangat spesifik dengan ekspektasi",
			)},
			{ID: "q8", Prompt: "Apakah Anda sudah punya pengalaman magang atau proyek nyata?", Options: options(
				"Ya, punya pengalaman magang dan beberapa proyek",
				"Punya pengalaman magang saja",
				"Hanya punya proyek kuliah/pribadi",
				"Belum punya pengalaman sama sekali",
			)},
		},
	}
}

// CareerSwitch returns the career-switch readiness questionnaire.
func CareerSwitch() QuestionSet {
	return QuestionSet{
		Variant: model.AssessmentCareerSwitch,
		Title:   "Assessment Kesiapan Switch Career",
		Questions: []Question{
			{ID: "q1", Prompt: "Berapa lama pengalaman kerja Anda di bidang saat ini?", Options: options(
				"Lebih dari 5 tahun",
				"3-5 tahun",
				"1-3 tahun",
				"Kurang dari 1 tahun",
			)},
			{ID: "q2", Prompt: "Seberapa yakin Anda dengan pilihan karir baru?", Options: options(
				"Sangat yakin, sudah riset mendalam",
				"Cukup yakin",
				"Masih ragu-ragu",
				"Belum yakin sama sekali",
			)},
			{ID: "q3", Prompt: "Apakah Anda sudah memiliki skill yang dibutuhkan di karir baru?", Options: options(
				"Ya, sudah menguasai skill utama",
				"Sudah punya sebagian skill",
				"Masih dalam proses belajar",
				"Belum mulai belajar skill baru",
			)},
			{ID: "q4", Prompt: "Apakah Anda punya financial buffer untuk masa transisi?", Options: options(
				"Ya, cukup untuk 6+ bulan",
				"Cukup untuk 3-6 bulan",
				"Hanya untuk 1-3 bulan",
				"Tidak punya financial buffer",
			)},
			{ID: "q5", Prompt: "Apakah Anda sudah punya network di industri target?", Options: options(
				"Ya, punya banyak koneksi",
				"Punya beberapa koneksi",
				"Sangat sedikit koneksi",
				"Tidak punya koneksi sama sekali",
			)},
			{ID: "q6", Prompt: "Apakah dukungan keluarga dan lingkungan Anda positif?", Options: options(
				"Sangat mendukung",
				"Cukup mendukung",
				"Kurang mendukung",
				"Tidak mendukung",
			)},
			{ID: "q7", Prompt: "Apakah Anda sudah membuat rencana transisi yang detail?", Options: options(
				"Ya, sudah punya roadmap lengkap",
				"Punya rencana dasar",
				"Masih kasar",
				"Belum punya rencana",
			)},
			{ID: "q8", Prompt: "Apakah Anda sudah mencoba proyek atau freelance di bidang baru?", Options: options(
				"Ya, sudah punya beberapa proyek",
				"Sudah 1-2 proyek",
				"Sedang mencoba proyek pertama",
				"Belum sama sekali",
			)},
		},
	}
}
