package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/codingevents/server/internal/api/handlers"
	"github.com/codingevents/server/internal/api/middleware"
	"github.com/codingevents/server/internal/auth"
	"github.com/codingevents/server/internal/config"
	"github.com/codingevents/server/internal/domain/events"
	"github.com/codingevents/server/internal/domain/members"
	"github.com/codingevents/server/internal/domain/projection"
	"github.com/codingevents/server/internal/domain/tags"
	"github.com/codingevents/server/internal/domain/users"
	"github.com/codingevents/server/internal/metrics"
	"github.com/codingevents/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) http.Handler {
	repo := postgres.NewRepository(pool)

	usersService := users.NewService(repo.Users(), logger)
	eventsService := events.NewService(repo.Events(), logger)
	membersService := members.NewService(repo.Members(), repo.Events(), logger)
	tagsService := tags.NewService(repo.Tags(), repo.Events(), logger)

	projector := projection.NewBuilder(cfg.Server.BaseURL)

	eventsHandler := handlers.NewEventsHandler(
		eventsService, membersService, tagsService, projector, cfg.Server.BaseURL, cfg.Environment,
	)
	membersHandler := handlers.NewMembersHandler(
		eventsService, membersService, projector, cfg.Environment,
	)
	tagsHandler := handlers.NewTagsHandler(
		tagsService, eventsService, projector, cfg.Server.BaseURL, cfg.Environment,
	)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	authed := middleware.BearerAuth(jwtManager, usersService)
	optionalAuth := middleware.OptionalBearerAuth(jwtManager, usersService)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", metrics.Handler())

	route := func(pattern string, table map[string]http.Handler) {
		mux.Handle(pattern, middleware.Metrics(pattern, methodMux(table)))
	}

	route("/api/events", map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: authed(http.HandlerFunc(eventsHandler.Register)),
	})
	route("/api/events/{id}", map[string]http.Handler{
		http.MethodGet:    authed(http.HandlerFunc(eventsHandler.Get)),
		http.MethodDelete: authed(http.HandlerFunc(eventsHandler.Cancel)),
	})
	route("/api/events/{id}/tags", map[string]http.Handler{
		http.MethodGet: optionalAuth(http.HandlerFunc(eventsHandler.ListTags)),
	})
	route("/api/events/{id}/tags/{tagId}", map[string]http.Handler{
		http.MethodPut:    authed(http.HandlerFunc(eventsHandler.AttachTag)),
		http.MethodDelete: authed(http.HandlerFunc(eventsHandler.DetachTag)),
	})
	route("/api/events/{id}/members", map[string]http.Handler{
		http.MethodGet:    authed(http.HandlerFunc(membersHandler.List)),
		http.MethodPost:   authed(http.HandlerFunc(membersHandler.Join)),
		http.MethodDelete: authed(http.HandlerFunc(membersHandler.Leave)),
	})
	route("/api/events/{id}/members/{memberId}", map[string]http.Handler{
		http.MethodDelete: authed(http.HandlerFunc(membersHandler.Remove)),
	})
	route("/api/tags", map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(tagsHandler.List),
		http.MethodPost: authed(http.HandlerFunc(tagsHandler.Create)),
	})
	route("/api/tags/{id}", map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(tagsHandler.Get),
	})
	route("/api/tags/{id}/events", map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(tagsHandler.ListEvents),
	})

	var handler http.Handler = mux
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(table map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := table[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(table))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(table map[string]http.Handler) string {
	methods := make([]string, 0, len(table))
	for method := range table {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
