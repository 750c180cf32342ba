package game

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) UserRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (s *SQLStore) ResolveTeacher(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM teachers WHERE user_id=$1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTeacherNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ConfirmGame runs the whole two-phase write in one transaction: any
// statement failure rolls everything back. MCQs without options are skipped
// before touching the database.
func (s *SQLStore) ConfirmGame(ctx context.Context, teacherID string, draft GameDraft) (res ConfirmResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfirmResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res.GameID = uuid.NewString()
	res.GameCode = NewGameCode()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id,subject,lesson,difficulty,teacher_id,game_code,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		res.GameID, draft.Subject, draft.Lesson, draft.Difficulty, teacherID, res.GameCode, time.Now().Unix())
	if err != nil {
		return ConfirmResult{}, err
	}

	for i, m := range draft.MCQs {
		if len(m.Options) == 0 {
			log.Printf("confirm game %s: question %q has no options, skipping", res.GameID, m.Question)
			res.Skipped++
			continue
		}

		qd := NewQuestionDraft(uuid.NewString(), m, i)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (id,game_id,question,ord,level) VALUES ($1,$2,$3,$4,$5)`,
			qd.ID, res.GameID, qd.Text, qd.Ord, qd.Level)
		if err != nil {
			return ConfirmResult{}, err
		}

		for _, opt := range m.Options {
			answerID := uuid.NewString()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO answers (id,question_id,text,is_correct) VALUES ($1,$2,$3,$4)`,
				answerID, qd.ID, opt.Text, opt.IsCorrect)
			if err != nil {
				return ConfirmResult{}, err
			}
			if opt.IsCorrect {
				qd.MarkCorrect(answerID)
			}
		}

		if answerID, ok := qd.CorrectAnswerID(); ok {
			_, err = tx.ExecContext(ctx,
				`UPDATE questions SET correct_answer=$1 WHERE id=$2`, answerID, qd.ID)
			if err != nil {
				return ConfirmResult{}, err
			}
		}
		res.Questions++
	}
	return res, nil
}

func (s *SQLStore) ListGames(ctx context.Context, teacherID string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,subject,lesson,difficulty,teacher_id,game_code,created_at
		 FROM games WHERE teacher_id=$1 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Subject, &g.Lesson, &g.Difficulty, &g.TeacherID, &g.GameCode, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetGame(ctx context.Context, teacherID, gameID string) (GameDetail, error) {
	var d GameDetail
	err := s.db.QueryRowContext(ctx,
		`SELECT id,subject,lesson,difficulty,teacher_id,game_code,created_at
		 FROM games WHERE id=$1 AND teacher_id=$2`, gameID, teacherID).
		Scan(&d.Game.ID, &d.Game.Subject, &d.Game.Lesson, &d.Game.Difficulty,
			&d.Game.TeacherID, &d.Game.GameCode, &d.Game.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return GameDetail{}, ErrNotFound
	}
	if err != nil {
		return GameDetail{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id,question,level,ord FROM questions WHERE game_id=$1 ORDER BY ord`, gameID)
	if err != nil {
		return GameDetail{}, err
	}
	defer rows.Close()
	d.Questions = []QuestionView{}
	for rows.Next() {
		var q QuestionView
		if err := rows.Scan(&q.ID, &q.Text, &q.Level, &q.Order); err != nil {
			return GameDetail{}, err
		}
		d.Questions = append(d.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return GameDetail{}, err
	}

	for i := range d.Questions {
		answers, err := s.answersFor(ctx, d.Questions[i].ID)
		if err != nil {
			return GameDetail{}, err
		}
		d.Questions[i].Answers = answers
	}
	return d, nil
}

func (s *SQLStore) answersFor(ctx context.Context, questionID string) ([]AnswerView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,text,is_correct FROM answers WHERE question_id=$1`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AnswerView{}
	for rows.Next() {
		var a AnswerView
		if err := rows.Scan(&a.ID, &a.Text, &a.IsCorrect); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteGame(ctx context.Context, teacherID, gameID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM games WHERE id=$1 AND teacher_id=$2`, gameID, teacherID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	// schema cascades to questions and answers
	_, err = s.db.ExecContext(ctx, `DELETE FROM games WHERE id=$1`, gameID)
	return err
}
