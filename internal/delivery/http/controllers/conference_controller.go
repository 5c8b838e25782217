package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

type ConferenceController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
}

func NewConferenceController(logger *slog.Logger, svc domain.ConferenceService) *ConferenceController {
	return &ConferenceController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateConferenceRequest is the request body for POST /conferences.
// swagger:model CreateConferenceRequest
type CreateConferenceRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Topics       []string `json:"topics"`
	City         string   `json:"city"`
	StartDate    string   `json:"start_date"` // YYYY-MM-DD
	EndDate      string   `json:"end_date"`   // YYYY-MM-DD
	MaxAttendees int      `json:"max_attendees"`
}

// Validate implements helpers.Validator.
func (req *CreateConferenceRequest) Validate() []string {
	var errs []string
	if req.Name == "" {
		errs = append(errs, "name is required")
	}
	if req.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must not be negative")
	}
	for _, d := range []string{req.StartDate, req.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			errs = append(errs, "dates must be YYYY-MM-DD")
			break
		}
	}
	return errs
}

// QueryConferencesRequest is the request body for POST /conferences/query.
// swagger:model QueryConferencesRequest
type QueryConferencesRequest struct {
	Filters []domain.ConferenceFilter `json:"filters"`
}

// Create godoc
// @Summary Create a conference
// @Description Creates a conference owned by the caller. Seats available starts equal to max attendees; a confirmation email is sent in the background.
// @Tags conference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body controllers.CreateConferenceRequest true "Conference"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conferences [post]
func (c *ConferenceController) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	conf := &domain.Conference{
		Name:         req.Name,
		Description:  req.Description,
		Topics:       req.Topics,
		City:         req.City,
		MaxAttendees: req.MaxAttendees,
	}
	if req.StartDate != "" {
		d, _ := time.Parse("2006-01-02", req.StartDate)
		conf.StartDate = &d
	}
	if req.EndDate != "" {
		d, _ := time.Parse("2006-01-02", req.EndDate)
		conf.EndDate = &d
	}

	if err := c.Service.Create(r.Context(), ident, conf); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, conf)
}

// Get godoc
// @Summary Get a conference by ID
// @Tags conference
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conferences/{conferenceID} [get]
func (c *ConferenceController) Get(w http.ResponseWriter, r *http.Request) {
	conferenceID := r.PathValue("conferenceID")
	if conferenceID == "" || !uuidRegex.MatchString(conferenceID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid conferenceID")
		return
	}
	conf, err := c.Service.Get(r.Context(), conferenceID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conf)
}

// ListCreated godoc
// @Summary List conferences created by the caller
// @Tags conference
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /conferences/created [get]
func (c *ConferenceController) ListCreated(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	confs, err := c.Service.ListCreated(r.Context(), ident)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, confs)
}

// ListAttending godoc
// @Summary List conferences the caller is registered for
// @Tags conference
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /conferences/attending [get]
func (c *ConferenceController) ListAttending(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	confs, err := c.Service.ListAttending(r.Context(), ident)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, confs)
}

// Query godoc
// @Summary Query conferences with the fixed filter set
// @Description Filters on CITY, TOPIC, MONTH, MAX_ATTENDEES with EQ/NE/GT/GTEQ/LT/LTEQ. At most one field may carry an inequality.
// @Tags conference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body controllers.QueryConferencesRequest true "Filters"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /conferences/query [post]
func (c *ConferenceController) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryConferencesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	confs, err := c.Service.Query(r.Context(), req.Filters)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, confs)
}

func (c *ConferenceController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "conference not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
