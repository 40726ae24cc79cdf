package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/httperr"
	"github.com/BruksfildServices01/barber-assistant/internal/httpresp"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	store directory.Store
	slots *availability.Engine
}

func NewPublicHandler(store directory.Store, slots *availability.Engine) *PublicHandler {
	return &PublicHandler{store: store, slots: slots}
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	all, err := h.store.ListServices(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	active := make([]models.Service, 0, len(all))
	for _, s := range all {
		if s.Active {
			active = append(active, s)
		}
	}
	httpresp.List(c, active)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// Availability accepts the same date formats as the chat and answers
// with canonical dates.
func (h *PublicHandler) Availability(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_params", "date is required.")
		return
	}

	day, err := validators.ParseDate(dateStr, timezone.Location())
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date must be MM/DD/YYYY, YYYY-MM-DD or DD-MM-YYYY.")
		return
	}

	open, err := h.slots.ListOpenSlots(
		c.Request.Context(),
		day.Format(validators.DateLayout),
		c.Query("barber_id"),
	)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, open)
}
