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

type SessionController struct {
	Logger  *slog.Logger
	Service domain.SessionService
}

func NewSessionController(logger *slog.Logger, svc domain.SessionService) *SessionController {
	return &SessionController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateSessionRequest is the request body for POST /conferences/{conferenceID}/sessions.
// swagger:model CreateSessionRequest
type CreateSessionRequest struct {
	Name          string   `json:"name"`
	Highlights    []string `json:"highlights"`
	Speaker       string   `json:"speaker"`
	Duration      int      `json:"duration"`
	TypeOfSession string   `json:"type_of_session"`
	Date          string   `json:"date"` // YYYY-MM-DD
	StartTime     int      `json:"start_time"`
}

// Validate implements helpers.Validator.
func (req *CreateSessionRequest) Validate() []string {
	var errs []string
	if req.Name == "" {
		errs = append(errs, "name is required")
	}
	if req.Duration < 0 {
		errs = append(errs, "duration must not be negative")
	}
	if req.StartTime < 0 || req.StartTime > 2359 {
		errs = append(errs, "start_time must be a 24-hour time like 1430")
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			errs = append(errs, "date must be YYYY-MM-DD")
		}
	}
	return errs
}

// Create godoc
// @Summary Create a session in a conference
// @Description Only the conference organizer may create sessions. The speaker is linked by stable id, found or created by name.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Param request body controllers.CreateSessionRequest true "Session"
// @Success 201 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conferences/{conferenceID}/sessions [post]
func (c *SessionController) Create(w http.ResponseWriter, r *http.Request) {
	conferenceID := r.PathValue("conferenceID")
	if conferenceID == "" || !uuidRegex.MatchString(conferenceID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid conferenceID")
		return
	}
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	session := &domain.Session{
		Name:          req.Name,
		Highlights:    req.Highlights,
		Duration:      req.Duration,
		TypeOfSession: req.TypeOfSession,
		StartTime:     req.StartTime,
	}
	if req.Date != "" {
		d, _ := time.Parse("2006-01-02", req.Date)
		session.Date = &d
	}

	created, err := c.Service.Create(r.Context(), ident, conferenceID, session, req.Speaker)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListByConference godoc
// @Summary List sessions of a conference
// @Description Optional type query parameter restricts to one session type.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Param type query string false "Session type"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conferences/{conferenceID}/sessions [get]
func (c *SessionController) ListByConference(w http.ResponseWriter, r *http.Request) {
	conferenceID := r.PathValue("conferenceID")
	if conferenceID == "" || !uuidRegex.MatchString(conferenceID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid conferenceID")
		return
	}
	var sessions []*domain.Session
	var err error
	if typeOfSession := r.URL.Query().Get("type"); typeOfSession != "" {
		sessions, err = c.Service.ListByType(r.Context(), conferenceID, typeOfSession)
	} else {
		sessions, err = c.Service.ListByConference(r.Context(), conferenceID)
	}
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}

// ListAll godoc
// @Summary List all sessions
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /sessions [get]
func (c *SessionController) ListAll(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Service.ListAll(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}

// ListBySpeaker godoc
// @Summary List sessions hosted by a speaker across all conferences
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param name query string true "Speaker name"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sessions/speaker [get]
func (c *SessionController) ListBySpeaker(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing speaker name")
		return
	}
	sessions, err := c.Service.ListBySpeaker(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "speaker not found")
			return
		}
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}

func (c *SessionController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "conference not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "must be the conference organizer")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
