package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{
		Logger:  logger,
		Service: svc,
	}
}

// SaveProfileRequest is the request body for POST /profile.
// swagger:model SaveProfileRequest
type SaveProfileRequest struct {
	DisplayName  string `json:"display_name"`
	TeeShirtSize string `json:"tee_shirt_size"`
}

// Validate implements helpers.Validator.
func (req *SaveProfileRequest) Validate() []string {
	var errs []string
	if req.TeeShirtSize != "" && !domain.TeeShirtSize(req.TeeShirtSize).Valid() {
		errs = append(errs, "unknown tee_shirt_size")
	}
	return errs
}

// Get godoc
// @Summary Get the caller's profile
// @Description Returns the profile for the authenticated user, creating a default one on first access.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /profile [get]
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile, err := c.Service.Get(r.Context(), ident)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// Save godoc
// @Summary Update the caller's profile
// @Description Updates display name and shirt size. Omitted fields keep their current value.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body controllers.SaveProfileRequest true "Profile fields"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /profile [post]
func (c *ProfileController) Save(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req SaveProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Service.Save(r.Context(), ident, req.DisplayName, domain.TeeShirtSize(req.TeeShirtSize))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

func (c *ProfileController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrContention):
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeContention, "conflicting concurrent update, please retry")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
