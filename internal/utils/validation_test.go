package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agendaPayload struct {
	StartTime string   `json:"startTime" binding:"required,clock"`
	Dates     []string `json:"dates" binding:"required,min=1,dive,isodate"`
}

func bindRequest(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var p agendaPayload
	return w, BindAndValidate(c, &p)
}

func TestBindAndValidate_CustomTags(t *testing.T) {
	_, ok := bindRequest(t, `{"startTime":"08:00","dates":["2026-03-10"]}`)
	assert.True(t, ok)

	w, ok := bindRequest(t, `{"startTime":"8 o'clock","dates":["2026-03-10"]}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "HH:MM")

	w, ok = bindRequest(t, `{"startTime":"08:00","dates":["10/03/2026"]}`)
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	w, ok := bindRequest(t, `{"startTime":`)
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}
