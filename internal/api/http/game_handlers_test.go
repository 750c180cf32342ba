package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/quizforge/quizforge-backend/internal/api/http"
	authmw "github.com/quizforge/quizforge-backend/internal/auth/middleware"
	"github.com/quizforge/quizforge-backend/internal/game"
)

/* ---------------- in-memory fakes satisfying game.Store and ai.Generator ---------------- */

type fakeStore struct {
	roles    map[string]string // userID -> role
	teachers map[string]string // userID -> teacherID

	games map[string]game.GameDetail // gameID -> detail

	confirmed  []game.GameDraft
	confirmErr error
	listed     []game.Game
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:    map[string]string{"u1": "teacher"},
		teachers: map[string]string{"u1": "t1"},
		games:    map[string]game.GameDetail{},
	}
}

func (s *fakeStore) UserRole(_ context.Context, userID string) (string, error) {
	r, ok := s.roles[userID]
	if !ok {
		return "", game.ErrUserNotFound
	}
	return r, nil
}

func (s *fakeStore) ResolveTeacher(_ context.Context, userID string) (string, error) {
	id, ok := s.teachers[userID]
	if !ok {
		return "", game.ErrTeacherNotFound
	}
	return id, nil
}

func (s *fakeStore) ConfirmGame(_ context.Context, teacherID string, draft game.GameDraft) (game.ConfirmResult, error) {
	if s.confirmErr != nil {
		return game.ConfirmResult{}, s.confirmErr
	}
	s.confirmed = append(s.confirmed, draft)
	return game.ConfirmResult{GameID: "g-new", GameCode: "abcd1234", Questions: len(draft.MCQs)}, nil
}

func (s *fakeStore) ListGames(_ context.Context, teacherID string) ([]game.Game, error) {
	return s.listed, nil
}

func (s *fakeStore) GetGame(_ context.Context, teacherID, gameID string) (game.GameDetail, error) {
	d, ok := s.games[gameID]
	if !ok || d.Game.TeacherID != teacherID {
		return game.GameDetail{}, game.ErrNotFound
	}
	return d, nil
}

func (s *fakeStore) DeleteGame(_ context.Context, teacherID, gameID string) error {
	d, ok := s.games[gameID]
	if !ok || d.Game.TeacherID != teacherID {
		return game.ErrNotFound
	}
	delete(s.games, gameID)
	return nil
}

type fakeGen struct {
	mcqs    []game.MCQ
	err     error
	gotText string
}

func (f *fakeGen) Generate(_ context.Context, text string) ([]game.MCQ, error) {
	f.gotText = text
	return f.mcqs, f.err
}

/* ---------------- helpers ---------------- */

func asTeacher(r *http.Request) *http.Request {
	ctx := authmw.WithIdentity(r.Context(), authmw.Identity{Subject: "u1", Role: "teacher"})
	return r.WithContext(ctx)
}

func withGameID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("gameID", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

/* ---------------- generate ---------------- */

func TestGenerateRequiresText(t *testing.T) {
	h := api.GenerateHandler(newFakeStore(), &fakeGen{})
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("GET", "/api/mygames/generate", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestGenerateReturnsPreview(t *testing.T) {
	gen := &fakeGen{mcqs: []game.MCQ{{Question: "2+2?", Options: []game.Option{{Text: "4", IsCorrect: true}}}}}
	h := api.GenerateHandler(newFakeStore(), gen)
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("GET", "/api/mygames/generate?text=photosynthesis", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body)
	}
	if gen.gotText != "photosynthesis" {
		t.Fatalf("generator got %q", gen.gotText)
	}
	var out struct {
		Preview []game.MCQ `json:"preview"`
		Note    string     `json:"note"`
	}
	decodeBody(t, rec, &out)
	if len(out.Preview) != 1 || out.Preview[0].Question != "2+2?" {
		t.Fatalf("unexpected preview: %+v", out.Preview)
	}
	if out.Note == "" {
		t.Fatalf("expected a note in the preview response")
	}
}

func TestGenerateRejectsNonTeacher(t *testing.T) {
	st := newFakeStore()
	st.roles["u1"] = "student"
	h := api.GenerateHandler(st, &fakeGen{})
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("GET", "/api/mygames/generate?text=x", nil)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d, want 403", rec.Code)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	h := api.GenerateHandler(newFakeStore(), &fakeGen{err: errors.New("ai service: status 502")})
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("GET", "/api/mygames/generate?text=x", nil)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}
}

/* ---------------- generate-from-pdf ---------------- */

func pdfUploadRequest(t *testing.T, field, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "lesson.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/api/mygames/generate-from-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return asTeacher(req)
}

func TestGenerateFromPDFCleansUpTempFile(t *testing.T) {
	var seenPath string
	extract := func(path string) (string, error) {
		seenPath = path
		return "extracted lesson text", nil
	}
	gen := &fakeGen{mcqs: []game.MCQ{{Question: "q"}}}
	h := api.GenerateFromPDFHandler(newFakeStore(), gen, t.TempDir(), extract)

	rec := httptest.NewRecorder()
	h(rec, pdfUploadRequest(t, "pdfFile", "%PDF-1.4 fake"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body)
	}
	if gen.gotText != "extracted lesson text" {
		t.Fatalf("generator got %q", gen.gotText)
	}
	if seenPath == "" {
		t.Fatalf("extractor never called")
	}
	if _, err := os.Stat(seenPath); !os.IsNotExist(err) {
		t.Fatalf("temp file %s still exists (err=%v)", seenPath, err)
	}
}

func TestGenerateFromPDFCleansUpOnExtractionFailure(t *testing.T) {
	var seenPath string
	extract := func(path string) (string, error) {
		seenPath = path
		return "", errors.New("not a pdf")
	}
	h := api.GenerateFromPDFHandler(newFakeStore(), &fakeGen{}, t.TempDir(), extract)

	rec := httptest.NewRecorder()
	h(rec, pdfUploadRequest(t, "pdfFile", "junk"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}
	if _, err := os.Stat(seenPath); !os.IsNotExist(err) {
		t.Fatalf("temp file %s still exists (err=%v)", seenPath, err)
	}
}

func TestGenerateFromPDFEmptyText(t *testing.T) {
	extract := func(string) (string, error) { return "   \n", nil }
	h := api.GenerateFromPDFHandler(newFakeStore(), &fakeGen{}, t.TempDir(), extract)
	rec := httptest.NewRecorder()
	h(rec, pdfUploadRequest(t, "pdfFile", "x"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestGenerateFromPDFMissingFile(t *testing.T) {
	h := api.GenerateFromPDFHandler(newFakeStore(), &fakeGen{}, t.TempDir(), func(string) (string, error) { return "", nil })
	rec := httptest.NewRecorder()
	h(rec, pdfUploadRequest(t, "wrongField", "x"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

/* ---------------- confirm ---------------- */

func TestConfirmRejectsEmptyMCQs(t *testing.T) {
	h := api.ConfirmHandler(newFakeStore())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/mygames/confirm", strings.NewReader(`{"subject":"math","mcqs":[]}`))
	h(rec, asTeacher(req))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestConfirmCreatesGame(t *testing.T) {
	st := newFakeStore()
	h := api.ConfirmHandler(st)
	body := `{"subject":"math","lesson":"arith","difficulty":"easy",
		"mcqs":[{"question":"2+2?","options":[{"text":"4","isCorrect":true},{"text":"5","isCorrect":false}]}]}`
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("POST", "/api/mygames/confirm", strings.NewReader(body))))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body)
	}
	var out map[string]string
	decodeBody(t, rec, &out)
	if out["gameId"] != "g-new" || out["message"] == "" {
		t.Fatalf("unexpected response: %v", out)
	}
	if len(st.confirmed) != 1 {
		t.Fatalf("expected 1 confirm call, got %d", len(st.confirmed))
	}
	draft := st.confirmed[0]
	if draft.Subject != "math" || len(draft.MCQs) != 1 || len(draft.MCQs[0].Options) != 2 {
		t.Fatalf("draft not passed through: %+v", draft)
	}
}

func TestConfirmTeacherRecordMissing(t *testing.T) {
	st := newFakeStore()
	delete(st.teachers, "u1")
	h := api.ConfirmHandler(st)
	body := `{"mcqs":[{"question":"q","options":[{"text":"a","isCorrect":true}]}]}`
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("POST", "/api/mygames/confirm", strings.NewReader(body))))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}

/* ---------------- list / get / delete ---------------- */

func TestListGames(t *testing.T) {
	st := newFakeStore()
	st.listed = []game.Game{{ID: "g2", CreatedAt: 200}, {ID: "g1", CreatedAt: 100}}
	h := api.ListGamesHandler(st)
	rec := httptest.NewRecorder()
	h(rec, asTeacher(httptest.NewRequest("GET", "/api/mygames/getall", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var out []game.Game
	decodeBody(t, rec, &out)
	if len(out) != 2 || out[0].ID != "g2" {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestGetGameNotFound(t *testing.T) {
	h := api.GetGameHandler(newFakeStore())
	rec := httptest.NewRecorder()
	req := withGameID(asTeacher(httptest.NewRequest("GET", "/api/mygames/nope", nil)), "nope")
	h(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}

func TestGetGameOwned(t *testing.T) {
	st := newFakeStore()
	st.games["g1"] = game.GameDetail{
		Game: game.Game{ID: "g1", TeacherID: "t1"},
		Questions: []game.QuestionView{{
			ID: "q1", Text: "2+2?", Level: 1, Order: 1,
			Answers: []game.AnswerView{{ID: "a1", Text: "4", IsCorrect: true}},
		}},
	}
	h := api.GetGameHandler(st)
	rec := httptest.NewRecorder()
	h(rec, withGameID(asTeacher(httptest.NewRequest("GET", "/api/mygames/g1", nil)), "g1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var out game.GameDetail
	decodeBody(t, rec, &out)
	if out.Game.ID != "g1" || len(out.Questions) != 1 || len(out.Questions[0].Answers) != 1 {
		t.Fatalf("unexpected detail: %+v", out)
	}
}

func TestDeleteGame(t *testing.T) {
	st := newFakeStore()
	st.games["g1"] = game.GameDetail{Game: game.Game{ID: "g1", TeacherID: "t1"}}
	h := api.DeleteGameHandler(st)
	rec := httptest.NewRecorder()
	h(rec, withGameID(asTeacher(httptest.NewRequest("DELETE", "/api/mygames/g1", nil)), "g1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body)
	}
	if _, ok := st.games["g1"]; ok {
		t.Fatalf("game not deleted")
	}

	// second delete: gone means 404
	rec = httptest.NewRecorder()
	h(rec, withGameID(asTeacher(httptest.NewRequest("DELETE", "/api/mygames/g1", nil)), "g1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}
