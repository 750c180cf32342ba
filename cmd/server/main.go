package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quizforge/quizforge-backend/internal/ai"
	api "github.com/quizforge/quizforge-backend/internal/api/http"
	auth "github.com/quizforge/quizforge-backend/internal/auth/middleware"
	"github.com/quizforge/quizforge-backend/internal/config"
	"github.com/quizforge/quizforge-backend/internal/db"
	"github.com/quizforge/quizforge-backend/internal/game"
	"github.com/quizforge/quizforge-backend/internal/pdftext"
	"github.com/quizforge/quizforge-backend/internal/rbac"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := game.NewSQLStore(dbh, cfg.DBDriver)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Upstream MCQ generator ---
	gen := ai.NewClient(cfg.AIServiceURL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → identity+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/api/mygames", func(gr chi.Router) {
			gr.With(rbac.Require("game:generate")).
				Get("/generate", api.GenerateHandler(store, gen))
			gr.With(rbac.Require("game:generate")).
				Post("/generate-from-pdf", api.GenerateFromPDFHandler(store, gen, cfg.UploadDir, pdftext.Extract))
			gr.With(rbac.Require("game:confirm")).
				Post("/confirm", api.ConfirmHandler(store))
			gr.With(rbac.Require("game:view")).
				Get("/getall", api.ListGamesHandler(store))
			gr.With(rbac.Require("game:view")).
				Get("/{gameID}", api.GetGameHandler(store))
			gr.With(rbac.Require("game:delete")).
				Delete("/{gameID}", api.DeleteGameHandler(store))
		})

		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/api/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/api/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
