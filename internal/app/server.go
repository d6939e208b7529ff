package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Routes
const (
	RouteHealth      = "/health"
	RouteConfig      = "/api/config"
	RouteProvinces   = "/api/provinces"
	RouteHolidays    = "/api/holidays"
	RouteHolidayDate = "/api/holidays/{date}"
	RouteWorkdays    = "/api/workdays"
	RouteDownload    = "/api/download"
	RouteSubscribe   = "/api/subscribe/{province}"
	RouteAdminWarm   = "/api/admin/warm"
)

// NewRouter builds the HTTP handler with every route and CORS applied
func NewRouter(allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc(RouteHealth, HandleHealth).Methods(http.MethodGet)
	router.HandleFunc(RouteConfig, GetConfig).Methods(http.MethodGet)
	router.HandleFunc(RouteProvinces, HandleProvinces).Methods(http.MethodGet)
	router.HandleFunc(RouteHolidays, HandleHolidays).Methods(http.MethodGet)
	router.HandleFunc(RouteHolidayDate, HandleHolidayDate).Methods(http.MethodGet)
	router.HandleFunc(RouteWorkdays, HandleWorkdays).Methods(http.MethodGet)
	router.HandleFunc(RouteDownload, HandleDownload).Methods(http.MethodGet)
	router.HandleFunc(RouteSubscribe, HandleSubscribe).Methods(http.MethodGet)

	// Admin routes (protected with Basic Auth)
	router.HandleFunc(RouteAdminWarm, RequireAuth(HandleWarm)).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	co := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return co.Handler(router)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within shutdownTimeout
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	Logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
