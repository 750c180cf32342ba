package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge-backend/internal/ai"
	authmw "github.com/quizforge/quizforge-backend/internal/auth/middleware"
	"github.com/quizforge/quizforge-backend/internal/game"
)

const previewNote = "This is a preview. You must confirm with POST /api/mygames/confirm."

// TextExtractor pulls plain text from a file on disk (see pdftext.Extract).
type TextExtractor func(path string) (string, error)

// callerTeacher re-verifies the teacher role against the users table and
// resolves the caller's teacher record. The role was already checked from
// the token by rbac middleware; the DB lookup is kept as defense-in-depth.
// On failure it writes the error response and reports ok=false.
func callerTeacher(w http.ResponseWriter, r *http.Request, store game.Store) (string, bool) {
	id := authmw.IdentityFromContext(r.Context())
	if id.Subject == "" {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	role, err := store.UserRole(r.Context(), id.Subject)
	if err != nil || role != "teacher" {
		writeErr(w, http.StatusForbidden, "only teachers can manage games")
		return "", false
	}
	teacherID, err := store.ResolveTeacher(r.Context(), id.Subject)
	if errors.Is(err, game.ErrTeacherNotFound) {
		writeErr(w, http.StatusNotFound, "teacher record not found")
		return "", false
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return "", false
	}
	return teacherID, true
}

// GET /api/mygames/generate?text=...
func GenerateHandler(store game.Store, gen ai.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("text")
		if text == "" {
			writeErr(w, http.StatusBadRequest, "missing 'text' query parameter")
			return
		}
		if _, ok := callerTeacher(w, r, store); !ok {
			return
		}
		mcqs, err := gen.Generate(r.Context(), text)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"preview": mcqs,
			"note":    previewNote,
		})
	}
}

// POST /api/mygames/generate-from-pdf (multipart, field "pdfFile")
func GenerateFromPDFHandler(store game.Store, gen ai.Generator, uploadDir string, extract TextExtractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("pdfFile")
		if err != nil {
			writeErr(w, http.StatusBadRequest, "no PDF file uploaded")
			return
		}
		defer f.Close()

		text, err := extractUpload(f, uploadDir, extract)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if strings.TrimSpace(text) == "" {
			writeErr(w, http.StatusBadRequest, "could not extract text from the PDF")
			return
		}

		if _, ok := callerTeacher(w, r, store); !ok {
			return
		}
		mcqs, err := gen.Generate(r.Context(), text)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"preview": mcqs,
			"note":    previewNote,
		})
	}
}

// extractUpload spools the upload to a temp file and always removes it,
// whether or not extraction succeeds.
func extractUpload(f io.Reader, uploadDir string, extract TextExtractor) (string, error) {
	tmp, err := os.CreateTemp(uploadDir, "upload-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, f)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	return extract(tmp.Name())
}

type confirmRequest struct {
	Subject    string     `json:"subject"`
	Lesson     string     `json:"lesson"`
	Difficulty string     `json:"difficulty"`
	MCQs       []game.MCQ `json:"mcqs"`
}

// POST /api/mygames/confirm
func ConfirmHandler(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if len(req.MCQs) == 0 {
			writeErr(w, http.StatusBadRequest, "no MCQs provided")
			return
		}
		teacherID, ok := callerTeacher(w, r, store)
		if !ok {
			return
		}
		res, err := store.ConfirmGame(r.Context(), teacherID, game.GameDraft{
			Subject:    req.Subject,
			Lesson:     req.Lesson,
			Difficulty: req.Difficulty,
			MCQs:       req.MCQs,
		})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Game created successfully",
			"gameId":  res.GameID,
		})
	}
}

// GET /api/mygames/getall
func ListGamesHandler(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teacherID, ok := callerTeacher(w, r, store)
		if !ok {
			return
		}
		games, err := store.ListGames(r.Context(), teacherID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

// GET /api/mygames/{gameID}
func GetGameHandler(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teacherID, ok := callerTeacher(w, r, store)
		if !ok {
			return
		}
		detail, err := store.GetGame(r.Context(), teacherID, chi.URLParam(r, "gameID"))
		if errors.Is(err, game.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "game not found or not owned by you")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// DELETE /api/mygames/{gameID}
func DeleteGameHandler(store game.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teacherID, ok := callerTeacher(w, r, store)
		if !ok {
			return
		}
		err := store.DeleteGame(r.Context(), teacherID, chi.URLParam(r, "gameID"))
		if errors.Is(err, game.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "game not found or not owned by you")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Game and related data deleted successfully",
		})
	}
}
