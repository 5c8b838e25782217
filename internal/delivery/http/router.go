package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	profileController *controllers.ProfileController,
	conferenceController *controllers.ConferenceController,
	registrationController *controllers.RegistrationController,
	sessionController *controllers.SessionController,
	announcementController *controllers.AnnouncementController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Profile
	mux.HandleFunc("GET /profile", auth(profileController.Get))
	mux.HandleFunc("POST /profile", auth(profileController.Save))

	// Conferences
	mux.HandleFunc("POST /conferences", auth(conferenceController.Create))
	mux.HandleFunc("POST /conferences/query", auth(conferenceController.Query))
	mux.HandleFunc("GET /conferences/created", auth(conferenceController.ListCreated))
	mux.HandleFunc("GET /conferences/attending", auth(conferenceController.ListAttending))
	mux.HandleFunc("GET /conferences/{conferenceID}", auth(conferenceController.Get))

	// Registration
	mux.HandleFunc("POST /conferences/{conferenceID}/registration", auth(registrationController.Register))
	mux.HandleFunc("DELETE /conferences/{conferenceID}/registration", auth(registrationController.Unregister))

	// Sessions
	mux.HandleFunc("POST /conferences/{conferenceID}/sessions", auth(sessionController.Create))
	mux.HandleFunc("GET /conferences/{conferenceID}/sessions", auth(sessionController.ListByConference))
	mux.HandleFunc("GET /sessions", auth(sessionController.ListAll))
	mux.HandleFunc("GET /sessions/speaker", auth(sessionController.ListBySpeaker))

	// Wishlist
	mux.HandleFunc("POST /sessions/{sessionID}/wishlist", auth(registrationController.AddToWishlist))
	mux.HandleFunc("DELETE /sessions/{sessionID}/wishlist", auth(registrationController.RemoveFromWishlist))

	// Announcement
	mux.HandleFunc("GET /conference/announcement", auth(announcementController.Get))
	mux.HandleFunc("POST /conference/announcement/recompute", auth(announcementController.Recompute))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
