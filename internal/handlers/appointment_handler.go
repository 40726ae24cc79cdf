package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/dto"
	"github.com/BruksfildServices01/barber-assistant/internal/httperr"
	"github.com/BruksfildServices01/barber-assistant/internal/httpresp"
	"github.com/BruksfildServices01/barber-assistant/internal/middleware"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	"github.com/BruksfildServices01/barber-assistant/internal/usecase/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	listByDate *appointment.ListAppointmentsByDate
	complete   *appointment.CompleteAppointment
	cancel     *appointment.CancelAppointment
	reminders  *appointment.SendReminders
}

func NewAppointmentHandler(
	listByDate *appointment.ListAppointmentsByDate,
	complete *appointment.CompleteAppointment,
	cancel *appointment.CancelAppointment,
	reminders *appointment.SendReminders,
) *AppointmentHandler {
	return &AppointmentHandler{
		listByDate: listByDate,
		complete:   complete,
		cancel:     cancel,
		reminders:  reminders,
	}
}

// ======================================================
// LIST BY DATE
// ======================================================

// ListByDate defaults to today in the business timezone.
func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date := queryDate(c)

	items, err := h.listByDate.Execute(c.Request.Context(), date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List[dto.AppointmentListDTO](c, items)
}

// ======================================================
// STATUS CHANGES
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.close(c, h.complete.Execute)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.close(c, h.complete.MarkNoShow)
}

func (h *AppointmentHandler) close(
	c *gin.Context,
	run func(ctx context.Context, id, actor string) (models.Appointment, error),
) {
	ap, err := run(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	d, err := h.cancel.Execute(c.Request.Context(), appointment.CancelAppointmentInput{
		AppointmentID: c.Param("id"),
		Origin:        notifier.OriginOperator,
		Actor:         middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, d.Appointment)
}

// ======================================================
// REMINDERS
// ======================================================

func (h *AppointmentHandler) SendReminders(c *gin.Context) {
	date := queryDate(c)

	queued, err := h.reminders.Execute(c.Request.Context(), date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"date":   date,
		"queued": queued,
	})
}

func queryDate(c *gin.Context) string {
	if d := c.Query("date"); d != "" {
		return d
	}
	return timezone.Now().Format(validators.DateLayout)
}
