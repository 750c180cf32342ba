package game

// Option is one labeled choice of an MCQ as sent by the generation service
// or the confirm request.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// MCQ is a multiple-choice question candidate. Order and Level are optional
// in the request; defaults are applied when the draft is built.
type MCQ struct {
	Question string   `json:"question"`
	Order    int      `json:"order,omitempty"`
	Level    int      `json:"level,omitempty"`
	Options  []Option `json:"options"`
}

type Game struct {
	ID         string `json:"id"`
	Subject    string `json:"subject"`
	Lesson     string `json:"lesson"`
	Difficulty string `json:"difficulty"`
	TeacherID  string `json:"teacher_id"`
	GameCode   string `json:"game_code"`
	CreatedAt  int64  `json:"created_at"`
}

type AnswerView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionView struct {
	ID      string       `json:"id"`
	Text    string       `json:"question"`
	Level   int          `json:"level"`
	Order   int          `json:"order"`
	Answers []AnswerView `json:"answers"`
}

// GameDetail is the full read model served by GET /api/mygames/{gameID}.
type GameDetail struct {
	Game      Game           `json:"game"`
	Questions []QuestionView `json:"questions"`
}
