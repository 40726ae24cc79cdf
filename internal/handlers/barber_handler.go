package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/httperr"
	"github.com/BruksfildServices01/barber-assistant/internal/httpresp"
	"github.com/BruksfildServices01/barber-assistant/internal/middleware"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

type BarberHandler struct {
	store directory.Store
	audit Auditor
}

func NewBarberHandler(store directory.Store, audit Auditor) *BarberHandler {
	return &BarberHandler{store: store, audit: audit}
}

// --------- Requests ---------

type CreateBarberRequest struct {
	Name         string                       `json:"name" binding:"required"`
	Phone        string                       `json:"phone"`
	Email        string                       `json:"email"`
	Specialties  []string                     `json:"specialties"`
	WorkingHours map[string]*models.TimeRange `json:"working_hours"`
}

type UpdateBarberRequest struct {
	Name        *string   `json:"name,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Specialties *[]string `json:"specialties,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

// WorkingHoursRequest replaces the whole weekly schedule. Weekdays left
// out (or null) are days off; an empty object means the default window
// every day.
type WorkingHoursRequest struct {
	Days map[string]*models.TimeRange `json:"days"`
}

// --------- Handlers ---------

func (h *BarberHandler) List(c *gin.Context) {
	barbers, err := h.store.ListBarbers(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if c.Query("active") == "true" {
		active := barbers[:0]
		for _, b := range barbers {
			if b.Active {
				active = append(active, b)
			}
		}
		barbers = active
	}

	httpresp.List(c, barbers)
}

func (h *BarberHandler) Create(c *gin.Context) {
	var req CreateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.store.CreateBarber(c.Request.Context(), models.Barber{
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Specialties:  req.Specialties,
		WorkingHours: req.WorkingHours,
		Active:       true,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	h.record(c, "barber_created", b.ID)
	httpresp.Created(c, b)
}

func (h *BarberHandler) Update(c *gin.Context) {
	b, err := h.store.GetBarber(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req UpdateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		b.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		b.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Specialties != nil {
		b.Specialties = *req.Specialties
	}
	if req.Active != nil {
		b.Active = *req.Active
	}

	b, err = h.store.UpdateBarber(c.Request.Context(), b)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	h.record(c, "barber_updated", b.ID)
	httpresp.OK(c, b)
}

func (h *BarberHandler) UpdateWorkingHours(c *gin.Context) {
	b, err := h.store.GetBarber(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var req WorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	days := make(map[string]*models.TimeRange, len(req.Days))
	for day, r := range req.Days {
		days[strings.ToLower(strings.TrimSpace(day))] = r
	}
	b.WorkingHours = days

	b, err = h.store.UpdateBarber(c.Request.Context(), b)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	h.record(c, "working_hours_updated", b.ID)
	httpresp.OK(c, b)
}

func (h *BarberHandler) record(c *gin.Context, action, id string) {
	h.audit.Dispatch(audit.Event{
		Action:   action,
		Entity:   "barber",
		EntityID: id,
		Actor:    middleware.Actor(c),
	})
}
