package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

type AnnouncementController struct {
	Logger  *slog.Logger
	Service domain.AnnouncementService
}

func NewAnnouncementController(logger *slog.Logger, svc domain.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{
		Logger:  logger,
		Service: svc,
	}
}

// AnnouncementResponse carries the current announcement text, empty when none.
// swagger:model AnnouncementResponse
type AnnouncementResponse struct {
	Announcement string `json:"announcement"`
}

// Get godoc
// @Summary Get the nearly-sold-out announcement
// @Description Returns the cached announcement. An empty string means no conference is nearly sold out (or the cache has not been populated yet).
// @Tags announcement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /conference/announcement [get]
func (c *AnnouncementController) Get(w http.ResponseWriter, r *http.Request) {
	announcement := c.Service.Fetch(r.Context())
	helpers.WriteJSONSuccess(w, http.StatusOK, AnnouncementResponse{Announcement: announcement})
}

// Recompute godoc
// @Summary Recompute the nearly-sold-out announcement
// @Description Scans conference inventory and rewrites the cached announcement. Normally driven by the background ticker; exposed for operators.
// @Tags announcement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /conference/announcement/recompute [post]
func (c *AnnouncementController) Recompute(w http.ResponseWriter, r *http.Request) {
	announcement, err := c.Service.Recompute(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "announcement recompute failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AnnouncementResponse{Announcement: announcement})
}
