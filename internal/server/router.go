// Package server wires handlers and middleware into the API's HTTP handler.
package server

import (
	"net/http"

	"github.com/ukydev/cafe-discovery/internal/auth"
	"github.com/ukydev/cafe-discovery/internal/config"
	"github.com/ukydev/cafe-discovery/internal/db"
	"github.com/ukydev/cafe-discovery/internal/events"
	"github.com/ukydev/cafe-discovery/internal/geo"
	"github.com/ukydev/cafe-discovery/internal/handlers"
	"github.com/ukydev/cafe-discovery/internal/middleware"
	"github.com/ukydev/cafe-discovery/internal/models"
)

// Deps are the collaborators the router hands to its handlers.
type Deps struct {
	Config    *config.Config
	Registry  geo.Registry
	Auth      *auth.Service
	Users     db.UserCollection
	Cafes     db.CafeCollection
	Likes     db.LikeCollection
	Publisher events.Publisher
}

// NewRouter builds the API handler: routes, then rate limiting, then request logging.
func NewRouter(d Deps) http.Handler {
	authMW := middleware.NewAuthMiddleware(d.Auth)
	rateMW := middleware.NewRateLimitMiddleware()

	authHandler := handlers.NewAuthHandler(d.Auth, d.Users, d.Config.IsAdminEmail)
	cafeHandler := &handlers.CafeHandler{
		Cafes:     d.Cafes,
		Likes:     d.Likes,
		Registry:  d.Registry,
		Reference: geo.Point{Lat: d.Config.Geo.ReferenceLat, Lon: d.Config.Geo.ReferenceLon},
	}
	likeHandler := &handlers.LikeHandler{Cafes: d.Cafes, Likes: d.Likes, Publisher: d.Publisher}
	metroHandler := &handlers.MetroHandler{Registry: d.Registry}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/self", authMW.Authenticate(http.HandlerFunc(authHandler.Self)))

	// Cafes
	mux.HandleFunc("GET /api/cafes", cafeHandler.List)
	mux.HandleFunc("GET /api/cafes/{id}", cafeHandler.Get)
	mux.Handle("POST /api/cafes", authMW.Protect(models.ActionAddCafe, cafeHandler.Add))
	mux.Handle("DELETE /api/cafes/{id}", authMW.Protect(models.ActionDeleteCafe, cafeHandler.Delete))

	// Likes
	mux.HandleFunc("GET /api/users/{id}/likes", likeHandler.ListByUser)
	mux.Handle("POST /api/cafes/{id}/likes", authMW.Protect(models.ActionLikeCafe, likeHandler.Add))
	mux.Handle("DELETE /api/likes/{id}", authMW.Protect(models.ActionLikeCafe, likeHandler.Delete))

	// Metro registry
	mux.HandleFunc("GET /api/metros", metroHandler.List)
	mux.HandleFunc("GET /api/metros/nearest", metroHandler.Nearest)

	limited := rateMW.RateLimit(d.Config.RateLimit.MaxRequests, d.Config.RateLimit.WindowSeconds)(mux)
	return middleware.RequestLogger(limited)
}
