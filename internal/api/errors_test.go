package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"projectpulse/internal/apperr"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", apperr.Unauthorized("not the owner"), http.StatusForbidden},
		{"validation", apperr.Validation("empty title"), http.StatusUnprocessableEntity},
		{"not found", apperr.NotFound("no such record"), http.StatusNotFound},
		{"conflict", apperr.Conflict("stale version"), http.StatusConflict},
		{"transient", apperr.Transient("db down", errors.New("conn refused")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tc.err)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestUnauthorizedResponseHidesDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, apperr.Unauthorized("user 7 is not the owner of project 3"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	body := w.Body.String()
	if body != `{"error":"forbidden"}` {
		t.Errorf("body leaks detail: %s", body)
	}
}
