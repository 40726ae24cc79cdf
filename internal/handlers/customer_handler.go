package handlers

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/httperr"
	"github.com/BruksfildServices01/barber-assistant/internal/httpresp"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

type CustomerHandler struct {
	store directory.Store
}

func NewCustomerHandler(store directory.Store) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// List returns customers newest first, optionally filtered by a
// substring of name, phone or email.
func (h *CustomerHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	all, err := h.store.ListCustomers(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]models.Customer, 0, len(all))
	for _, cu := range all {
		if query != "" &&
			!strings.Contains(strings.ToLower(cu.Name), query) &&
			!strings.Contains(cu.Phone, query) &&
			!strings.Contains(strings.ToLower(cu.Email), query) {
			continue
		}
		out = append(out, cu)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	httpresp.List(c, out)
}
