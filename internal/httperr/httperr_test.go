package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("invalid_date"), http.StatusBadRequest, "invalid_date"},
		{apperr.NotFound("appointment"), http.StatusNotFound, "appointment_not_found"},
		{apperr.Conflict("slot_taken"), http.StatusConflict, "slot_taken"},
		{apperr.Upstream("gemini_chat", errors.New("down")), http.StatusBadGateway, "upstream_unavailable"},
		{apperr.Persistence("save_appointments", errors.New("disk full")), http.StatusInternalServerError, "internal_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, tc.err)

		if w.Code != tc.status {
			t.Fatalf("%v: status %d, want %d", tc.err, w.Code, tc.status)
		}
		var body HTTPError
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.code {
			t.Fatalf("%v: code %q, want %q", tc.err, body.Code, tc.code)
		}
	}
}
