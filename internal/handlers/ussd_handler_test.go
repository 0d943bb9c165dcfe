package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func postUSSD(t *testing.T, text string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(&strings.Builder{})

	router := gin.New()
	router.POST("/api/ussd", NewUSSDHandler(logger).Handle)

	form := url.Values{}
	form.Set("sessionId", "ATUid_123")
	form.Set("phoneNumber", "+254712345678")
	form.Set("text", text)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ussd", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestUSSDMenu(t *testing.T) {
	t.Run("Fresh Session Gets The Menu", func(t *testing.T) {
		w := postUSSD(t, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "CON "))
		assert.Contains(t, w.Body.String(), "1. Book a survey")
	})

	t.Run("Booking Choice Ends The Session", func(t *testing.T) {
		w := postUSSD(t, "1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "END "))
	})

	t.Run("Invalid Choice Ends The Session", func(t *testing.T) {
		w := postUSSD(t, "9")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "END Invalid choice"))
	})
}
