package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/focus-api/internal/api"
	apiMiddleware "github.com/phrazzld/focus-api/internal/api/middleware"
)

// setupRouter builds the HTTP routes on top of the wired application.
func (app *application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)
	r.Use(apiMiddleware.Trace(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenValidator())
	limiter := apiMiddleware.NewRateLimiter(
		app.config.RateLimit.AIRequestsPerMinute, app.config.RateLimit.Burst)

	sessions := api.NewSessionHandler(app.registry)
	progress := api.NewProgressHandler(app.registry, app.progress)
	planner := api.NewPlannerHandler(app.registry, app.planner, app.logger)
	shop := api.NewShopHandler(app.registry, app.shop)
	prefs := api.NewPreferencesHandler(app.registry, app.prefs)
	mentor := api.NewMentorHandler(app.registry, app.mentor)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Identify)

		if app.accounts != nil {
			accounts := api.NewAuthHandler(app.accounts, app.registry, app.logger)
			r.Post("/auth/register", accounts.Register)
			r.Post("/auth/login", accounts.Login)
			r.With(authMiddleware.Require).Post("/auth/logout", accounts.Logout)
		}

		r.Get("/stats", progress.Stats)
		r.Get("/stats/summary", progress.Summary)
		r.Get("/reviews", progress.Reviews)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Post("/start", sessions.Start)
			r.Post("/cancel", sessions.Cancel)
			r.Post("/mastery", sessions.RateMastery)
			r.Put("/duration", sessions.SetDuration)
		})

		r.Route("/planner/subjects", func(r chi.Router) {
			r.Get("/", planner.ListSubjects)
			r.Post("/", planner.CreateSubject)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", planner.DeleteSubject)
				r.Post("/lessons", planner.CreateLesson)
				r.Post("/lessons/{lessonID}/toggle", planner.ToggleLesson)
				r.Put("/lessons/{lessonID}/link", planner.SetLessonLink)
				r.Delete("/lessons/{lessonID}", planner.DeleteLesson)
				r.Post("/exercises", planner.CreateExercise)
				r.Post("/exercises/{exerciseID}/toggle", planner.ToggleExercise)
				r.Post("/flashcards", planner.CreateFlashcard)
				r.Delete("/flashcards/{cardID}", planner.DeleteFlashcard)
				r.With(limiter.Limit).Post("/strategy", planner.GenerateStrategy)
			})
		})

		r.Get("/shop", shop.Catalog)
		r.Post("/shop/{itemID}/purchase", shop.Purchase)

		r.Route("/preferences", func(r chi.Router) {
			r.Put("/theme", prefs.SelectTheme)
			r.Put("/sound", prefs.SetSound)
			r.Put("/alarm", prefs.SetAlarm)
			r.Post("/sidebar/toggle", prefs.ToggleSidebar)
			r.Post("/audio", prefs.UploadAudio)
			r.Delete("/audio/{id}", prefs.DeleteAudio)
		})

		r.Route("/mentor", func(r chi.Router) {
			r.With(limiter.Limit).Get("/tip", mentor.Tip)
			r.Get("/chat", mentor.History)
			r.With(limiter.Limit).Post("/chat", mentor.Ask)
			r.Delete("/chat", mentor.Clear)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
