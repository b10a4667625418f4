package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jinbekim/quizquiz/handlers"
	"github.com/jinbekim/quizquiz/services/scheduler"

	"github.com/gorilla/mux"
)

const (
	publishTimeout  = 5 * time.Minute
	gradeTimeout    = 10 * time.Minute
	shutdownTimeout = 30 * time.Second
)

func runServe(ctx context.Context, a *app) error {
	sched := scheduler.New(time.Local)
	if err := sched.Add(scheduler.Job{
		Name:    "publish",
		Spec:    a.cfg.QuizPublishCron,
		Timeout: publishTimeout,
		Run: func(ctx context.Context) error {
			_, _, err := a.sessions.Start(ctx, "", "")
			return err
		},
	}); err != nil {
		return err
	}
	if err := sched.Add(scheduler.Job{
		Name:    "grade",
		Spec:    a.cfg.QuizGradingCron,
		Timeout: gradeTimeout,
		Run: func(ctx context.Context) error {
			_, err := a.sessions.GradeAllActive(ctx)
			return err
		},
	}); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched.Start()
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Server starting on port %s", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Printf("[INFO] Shutting down")
	case err := <-errCh:
		serveErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] HTTP shutdown: %v", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Printf("[WARN] %v", err)
	}
	return serveErr
}

func newRouter(a *app) *mux.Router {
	router := mux.NewRouter()
	router.Use(jsonMiddleware)

	handlers.NewQuizHandler(a.sessions).RegisterRoutes(router)
	handlers.NewLeaderboardHandler(a.leaderboard, a.cfg.LeaderboardSize).RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler(a)).Methods("GET")
	return router
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := a.db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "database": "unreachable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}
}
