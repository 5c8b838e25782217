package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// BooleanResponse is the success payload for registration and wishlist operations.
// swagger:model BooleanResponse
type BooleanResponse struct {
	Result bool `json:"result"`
}

// Register godoc
// @Summary Register the caller for a conference
// @Description Registers the authenticated user for the conference, taking one seat. Fails with 409 when already registered or sold out; 503 (code contention) is retryable.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: contention"
// @Router /conferences/{conferenceID}/registration [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	conferenceID, ident, ok := c.conferenceRequest(w, r)
	if !ok {
		return
	}
	result, err := c.Service.Register(r.Context(), ident, conferenceID)
	if err != nil {
		c.writeError(w, r, err, "conference not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BooleanResponse{Result: result})
}

// Unregister godoc
// @Summary Unregister the caller from a conference
// @Description Removes the registration and returns the seat. Returns result false when the caller was not registered.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: contention"
// @Router /conferences/{conferenceID}/registration [delete]
func (c *RegistrationController) Unregister(w http.ResponseWriter, r *http.Request) {
	conferenceID, ident, ok := c.conferenceRequest(w, r)
	if !ok {
		return
	}
	result, err := c.Service.Unregister(r.Context(), ident, conferenceID)
	if err != nil {
		c.writeError(w, r, err, "conference not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BooleanResponse{Result: result})
}

// AddToWishlist godoc
// @Summary Add a session to the caller's wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /sessions/{sessionID}/wishlist [post]
func (c *RegistrationController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	sessionID, ident, ok := c.sessionRequest(w, r)
	if !ok {
		return
	}
	result, err := c.Service.AddToWishlist(r.Context(), ident, sessionID)
	if err != nil {
		c.writeError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BooleanResponse{Result: result})
}

// RemoveFromWishlist godoc
// @Summary Remove a session from the caller's wishlist
// @Description Returns result false when the session was not on the wishlist.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param sessionID path string true "Session ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Router /sessions/{sessionID}/wishlist [delete]
func (c *RegistrationController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	sessionID, ident, ok := c.sessionRequest(w, r)
	if !ok {
		return
	}
	result, err := c.Service.RemoveFromWishlist(r.Context(), ident, sessionID)
	if err != nil {
		c.writeError(w, r, err, "session not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BooleanResponse{Result: result})
}

func (c *RegistrationController) conferenceRequest(w http.ResponseWriter, r *http.Request) (string, domain.Identity, bool) {
	return c.pathIDRequest(w, r, "conferenceID")
}

func (c *RegistrationController) sessionRequest(w http.ResponseWriter, r *http.Request) (string, domain.Identity, bool) {
	return c.pathIDRequest(w, r, "sessionID")
}

func (c *RegistrationController) pathIDRequest(w http.ResponseWriter, r *http.Request, param string) (string, domain.Identity, bool) {
	id := r.PathValue(param)
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+param)
		return "", domain.Identity{}, false
	}
	if !uuidRegex.MatchString(id) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+param)
		return "", domain.Identity{}, false
	}
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", domain.Identity{}, false
	}
	return id, ident, true
}

func (c *RegistrationController) writeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrContention):
		// The one retryable outcome: the optimistic transaction kept
		// losing to concurrent writers.
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeContention, "conflicting concurrent update, please retry")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
