package assessment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmapatha/portal/internal/model"
)

func uniformAnswers(set QuestionSet, v int) AnswerSet {
	answers := AnswerSet{}
	for _, q := range set.Questions {
		answers[q.ID] = v
	}
	return answers
}

func TestQuestionSetsShape(t *testing.T) {
	for _, set := range []QuestionSet{FreshGraduate(), CareerSwitch()} {
		t.Run(string(set.Variant), func(t *testing.T) {
			require.Equal(t, 8, set.Len())
			seen := map[string]bool{}
			for _, q := range set.Questions {
				assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
				seen[q.ID] = true
				require.Len(t, q.Options, 4)
				for i, o := range q.Options {
					assert.Equal(t, 4-i, o.Value)
					assert.NotEmpty(t, o.Label)
				}
			}
		})
	}
}

func TestForVariant(t *testing.T) {
	set, err := ForVariant(model.AssessmentCareerSwitch)
	require.NoError(t, err)
	assert.Equal(t, model.AssessmentCareerSwitch, set.Variant)

	_, err = ForVariant("career_switcher")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestComputeScoreBounds(t *testing.T) {
	set := FreshGraduate()
	assert.Equal(t, 100.0, ComputeScore(uniformAnswers(set, 4), set.Len()))
	assert.Equal(t, 25.0, ComputeScore(uniformAnswers(set, 1), set.Len()))
	assert.Equal(t, 0.0, ComputeScore(AnswerSet{}, 0))

	// Every combination of two distinct values stays within [25, 100].
	for a := 1; a <= 4; a++ {
		for b := 1; b <= 4; b++ {
			answers := AnswerSet{}
			for i, q := range set.Questions {
				answers[q.ID] = a
				if i%2 == 1 {
					answers[q.ID] = b
				}
			}
			score := ComputeScore(answers, set.Len())
			assert.GreaterOrEqual(t, score, 25.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	}
}

func TestComputeScoreMixed(t *testing.T) {
	answers := AnswerSet{"q1": 4, "q2": 3, "q3": 2, "q4": 1, "q5": 4, "q6": 3, "q7": 2, "q8": 1}
	// 20 of 32.
	assert.InDelta(t, 62.5, ComputeScore(answers, 8), 1e-9)
}

func TestSelectTierBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{100, TierExcellent},
		{80, TierExcellent},
		{79.999, TierGood},
		{60, TierGood},
		{59.999, TierNeedsWork},
		{40, TierNeedsWork},
		{39.999, TierEarlyStage},
		{25, TierEarlyStage},
		{-5, TierEarlyStage},
		{150, TierExcellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectTier(tt.score), "score %v", tt.score)
	}
}

func TestSelectRecommendation(t *testing.T) {
	texts := map[string]bool{}
	for _, v := range model.AssessmentTypes {
		for _, score := range []float64{90, 70, 50, 30} {
			text := SelectRecommendation(v, score)
			require.NotEmpty(t, text)
			texts[text] = true
		}
	}
	assert.Len(t, texts, 8, "each tier and variant has its own text")

	assert.True(t, strings.HasPrefix(SelectRecommendation(model.AssessmentFreshGraduate, 80),
		"Luar biasa! Anda sangat siap memasuki dunia kerja."))
	assert.True(t, strings.HasPrefix(SelectRecommendation(model.AssessmentCareerSwitch, 39.999),
		"Switch career adalah keputusan besar."))
}

func TestEvaluate(t *testing.T) {
	set := FreshGraduate()

	res, err := Evaluate(set, uniformAnswers(set, 4))
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, TierExcellent, res.Tier)
	assert.Equal(t, freshGraduateRecommendations[TierExcellent], res.Recommendations)

	partial := uniformAnswers(set, 3)
	delete(partial, "q8")
	_, err = Evaluate(set, partial)
	assert.ErrorIs(t, err, ErrIncomplete)

	bad := uniformAnswers(set, 3)
	bad["q2"] = 5
	_, err = Evaluate(set, bad)
	assert.ErrorIs(t, err, ErrInvalidValue)

	extra := uniformAnswers(set, 3)
	extra["q9"] = 2
	_, err = Evaluate(set, extra)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestTierLabel(t *testing.T) {
	assert.Equal(t, "Sangat Baik", TierExcellent.Label())
	assert.Equal(t, "Perlu Peningkatan", TierEarlyStage.Label())
}
