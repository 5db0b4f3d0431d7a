package assessment

import (
	"github.com/dharmapatha/portal/internal/model"
)

// Tier is one of the fixed score bands that select a recommendation text.
type Tier string

const (
	TierExcellent  Tier = "excellent"
	TierGood       Tier = "good"
	TierNeedsWork  Tier = "needs-work"
	TierEarlyStage Tier = "early-stage"
)

// Lower bounds of the tiers, inclusive.
const (
	excellentFrom = 80
	goodFrom      = 60
	needsWorkFrom = 40
)

// Label returns the admin badge text for the tier.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Sangat Baik"
	case TierGood:
		return "Baik"
	case TierNeedsWork:
		return "Cukup"
	}
	return "Perlu Peningkatan"
}

// Result is the outcome of a completed questionnaire.
type Result struct {
	Score           float64
	Tier            Tier
	Recommendations string
}

// ComputeScore returns the sum of the answer values as a percentage of the
// maximum attainable total of questionCount questions.
func ComputeScore(answers AnswerSet, questionCount int) float64 {
	if questionCount <= 0 {
		return 0
	}
	total := 0
	for _, v := range answers {
		total += v
	}
	return float64(total) / float64(questionCount*MaxOptionValue) * 100
}

// SelectTier maps a score to its tier. The first matching lower bound wins.
func SelectTier(score float64) Tier {
	switch {
	case score >= excellentFrom:
		return TierExcellent
	case score >= goodFrom:
		return TierGood
	case score >= needsWorkFrom:
		return TierNeedsWork
	default:
		return TierEarlyStage
	}
}

// SelectRecommendation returns the fixed recommendation text for the variant
// and the tier of score.
func SelectRecommendation(variant model.AssessmentType, score float64) string {
	tier := SelectTier(score)
	if variant == model.AssessmentCareerSwitch {
		return careerSwitchRecommendations[tier]
	}
	return freshGraduateRecommendations[tier]
}

// Evaluate validates answers against the set and computes the result.
func Evaluate(set QuestionSet, answers AnswerSet) (Result, error) {
	if err := set.Validate(answers); err != nil {
		return Result{}, err
	}
	score := ComputeScore(answers, set.Len())
	return Result{
		Score:           score,
		Tier:            SelectTier(score),
		Recommendations: SelectRecommendation(set.Variant, score),
	}, nil
}

var freshGraduateRecommendations = map[Tier]string{
	TierExcellent: `Luar biasa! Anda sangat siap memasuki dunia kerja. Berikut rekomendasi untuk memaksimalkan peluang:

• Terus kirim lamaran ke perusahaan target
• Manfaatkan network yang sudah Anda miliki
• Persiapkan portfolio online yang menarik
• Aktif di LinkedIn dan platform profesional lainnya
• Pertimbangkan untuk melamar posisi yang lebih menantang`,
	TierGood: `Bagus! Anda cukup siap, namun ada beberapa area yang perlu ditingkatkan:

• Perbaiki dan update CV serta portfolio Anda
• Tambah koneksi profesional melalui networking event
• Ikuti training atau sertifikasi yang relevan
• Latih kemampuan interview dengan teman atau mentor
• Riset lebih dalam tentang industri target Anda`,
	TierNeedsWork: `Anda perlu persiapan lebih matang. Fokus pada area berikut:

• Buat CV profesional dan portfolio yang menarik
• Mulai riset industri dan perusahaan target
• Ikuti workshop atau bootcamp untuk skill development
• Mulai bangun network profesional
• Cari pengalaman magang atau project freelance`,
	TierEarlyStage: `Anda masih di tahap awal persiapan. Langkah-langkah yang harus dilakukan:

• Segera buat CV dan portfolio dasar
• Tentukan industri dan posisi yang Anda minati
• Ikuti kursus online atau bootcamp intensif
• Cari mentor atau career counselor
• Mulai dari volunteer atau magang untuk pengalaman
• Bergabung dengan komunitas profesional di bidang Anda`,
}

var careerSwitchRecommendations = map[Tier]string{
	TierExcellent: `Luar biasa! Anda sangat siap untuk switch career. Berikut langkah selanjutnya:

• Mulai aplikasi ke posisi di industri baru
• Leverage network yang sudah Anda bangun
• Update LinkedIn dengan skill dan proyeknya baru
• Persiapkan cerita transisi karir yang compelling
• Pertimbangkan untuk mulai dengan posisi entry-to-mid level
• Jangan ragu untuk negotiate berdasarkan pengalaman Anda`,
	TierGood: `Bagus! Anda di jalur yang tepat, namun ada beberapa area yang perlu diperkuat:

• Perkuat skill fundamental di bidang baru melalui kursus atau bootcamp
• Bangun portfolio dengan 2-3 proyek solid
• Perluas network dengan aktif di komunitas industri target
• Pastikan financial buffer cukup untuk masa transisi
• Mulai aplikasi sambil terus belajar
• Pertimbangkan untuk ambil part-time project di bidang baru`,
	TierNeedsWork: `Anda perlu persiapan lebih matang sebelum switch. Fokus pada:

• Deep dive ke skill yang dibutuhkan di karir baru
• Buat rencana transisi yang detail dengan timeline realistis
• Mulai bangun network dari sekarang
• Kumpulkan financial buffer minimal 3-6 bulan
• Coba freelance atau side project di bidang baru
• Cari mentor yang sudah sukses di industri target`,
	TierEarlyStage: `Switch career adalah keputusan besar. Anda perlu persiapan lebih intensif:

• Lakukan riset mendalam tentang industri target
• Mulai belajar skill fundamental secara intensif
• Buat financial plan untuk masa transisi
• Diskusikan dengan keluarga tentang rencana Anda
• Pertimbangkan untuk mulai dengan part-time atau freelance
• Cari career counselor atau mentor untuk guidance
• Set timeline realistis (minimal 6-12 bulan persiapan)
• Jangan buru-buru resign, persiapkan dulu dengan matang`,
}
