package game

// The confirm operation is a two-phase write: a question row must exist
// before its answer rows (answers reference the question), yet the question's
// correct_answer column references one of those answers. The draft types
// below make the "correct answer not yet known" state explicit instead of
// leaving it implicit in call ordering.

// GameDraft is a confirmed-but-not-yet-persisted game.
type GameDraft struct {
	Subject    string
	Lesson     string
	Difficulty string
	MCQs       []MCQ
}

// QuestionDraft is a question inserted without its correct_answer. It is
// resolved once the flagged-correct answer row exists.
type QuestionDraft struct {
	ID    string
	Text  string
	Ord   int
	Level int

	correctAnswerID string
}

// NewQuestionDraft applies the request defaults: position falls back to the
// MCQ's index in the confirm payload (1-based), level to 1.
func NewQuestionDraft(id string, m MCQ, index int) QuestionDraft {
	ord := m.Order
	if ord <= 0 {
		ord = index + 1
	}
	level := m.Level
	if level <= 0 {
		level = 1
	}
	return QuestionDraft{ID: id, Text: m.Question, Ord: ord, Level: level}
}

// MarkCorrect records the answer row flagged isCorrect. When several options
// carry the flag, the last one in input order wins.
func (d *QuestionDraft) MarkCorrect(answerID string) {
	d.correctAnswerID = answerID
}

// CorrectAnswerID reports the resolved correct answer, if any option was
// flagged.
func (d *QuestionDraft) CorrectAnswerID() (string, bool) {
	return d.correctAnswerID, d.correctAnswerID != ""
}

// ConfirmResult summarises a persisted confirm call. Skipped counts MCQs
// dropped for having no options.
type ConfirmResult struct {
	GameID    string
	GameCode  string
	Questions int
	Skipped   int
}
