package assessment

import (
	"errors"
	"fmt"
)

// State is the position of a Flow in the answering lifecycle.
type State int

const (
	StateAnswering State = iota
	StateSubmitting
	StateResult
)

func (s State) String() string {
	switch s {
	case StateAnswering:
		return "answering"
	case StateSubmitting:
		return "submitting"
	case StateResult:
		return "result"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNotAnswered means the current question has no answer yet.
	ErrNotAnswered = errors.New("assessment: current question not answered")
	// ErrFirstQuestion means there is no question before the current one.
	ErrFirstQuestion = errors.New("assessment: already at first question")
	// ErrNotLastQuestion means submit was attempted before the last question.
	ErrNotLastQuestion = errors.New("assessment: submit is only possible at the last question")
	// ErrTransition means the action is not valid in the current state.
	ErrTransition = errors.New("assessment: invalid transition")
)

// Flow walks a visitor through a question set one question at a time.
// Initial state is Answering(0), terminal state is Result.
type Flow struct {
	set     QuestionSet
	index   int
	answers AnswerSet
	state   State
	result  Result
}

// NewFlow starts a flow at the first question with no answers.
func NewFlow(set QuestionSet) *Flow {
	return &Flow{set: set, answers: AnswerSet{}}
}

// Restore rebuilds an in-progress flow from a previously rendered step.
// The index is clamped to the question range.
func Restore(set QuestionSet, index int, answers AnswerSet) (*Flow, error) {
	f := NewFlow(set)
	for id, v := range answers {
		if err := f.Answer(id, v); err != nil {
			return nil, err
		}
	}
	f.index = max(0, min(index, set.Len()-1))
	return f, nil
}

// Set returns the question set being answered.
func (f *Flow) Set() QuestionSet { return f.set }

// State returns the current lifecycle state.
func (f *Flow) State() State { return f.state }

// Index returns the zero-based position of the current question.
func (f *Flow) Index() int { return f.index }

// Current returns the question at the current position.
func (f *Flow) Current() Question { return f.set.Questions[f.index] }

// IsLast reports whether the current question is the last one.
func (f *Flow) IsLast() bool { return f.index == f.set.Len()-1 }

// AnswerFor returns the recorded answer of a question.
func (f *Flow) AnswerFor(id string) (int, bool) {
	v, ok := f.answers[id]
	return v, ok
}

// Answers returns a copy of the recorded answers.
func (f *Flow) Answers() AnswerSet {
	out := make(AnswerSet, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return out
}

// Result returns the computed result once the flow has been submitted.
func (f *Flow) Result() Result { return f.result }

// Progress returns the completed share of the questionnaire in percent,
// counting the current question.
func (f *Flow) Progress() int {
	if f.set.Len() == 0 {
		return 0
	}
	return (f.index + 1) * 100 / f.set.Len()
}

// CanNext reports whether "next" is enabled.
func (f *Flow) CanNext() bool {
	if f.state != StateAnswering || f.IsLast() {
		return false
	}
	_, ok := f.answers[f.Current().ID]
	return ok
}

// CanPrevious reports whether "previous" is enabled.
func (f *Flow) CanPrevious() bool {
	return f.state == StateAnswering && f.index > 0
}

// Answer records the chosen value for a question.
func (f *Flow) Answer(id string, value int) error {
	if f.state != StateAnswering {
		return ErrTransition
	}
	if _, ok := f.set.Question(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	if value < 1 || value > MaxOptionValue {
		return fmt.Errorf("%w: %s=%d", ErrInvalidValue, id, value)
	}
	f.answers[id] = value
	return nil
}

// Next moves to the following question.
func (f *Flow) Next() error {
	if f.state != StateAnswering || f.IsLast() {
		return ErrTransition
	}
	if _, ok := f.answers[f.Current().ID]; !ok {
		return ErrNotAnswered
	}
	f.index++
	return nil
}

// Previous moves back one question.
func (f *Flow) Previous() error {
	if f.state != StateAnswering {
		return ErrTransition
	}
	if f.index == 0 {
		return ErrFirstQuestion
	}
	f.index--
	return nil
}

// Submit computes the result and moves the flow to Submitting. The caller
// persists the result and then calls Succeed or Fail.
func (f *Flow) Submit() (Result, error) {
	if f.state != StateAnswering {
		return Result{}, ErrTransition
	}
	if !f.IsLast() {
		return Result{}, ErrNotLastQuestion
	}
	res, err := Evaluate(f.set, f.answers)
	if err != nil {
		return Result{}, err
	}
	f.result = res
	f.state = StateSubmitting
	return res, nil
}

// Succeed completes a submission that was stored.
func (f *Flow) Succeed() error {
	if f.state != StateSubmitting {
		return ErrTransition
	}
	f.state = StateResult
	return nil
}

// Fail reverts a submission that could not be stored to the last question,
// keeping all answers.
func (f *Flow) Fail() error {
	if f.state != StateSubmitting {
		return ErrTransition
	}
	f.state = StateAnswering
	f.index = f.set.Len() - 1
	f.result = Result{}
	return nil
}
