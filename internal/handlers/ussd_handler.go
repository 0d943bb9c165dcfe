package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// USSDHandler serves the USSD menu. Aggregators POST form-encoded session
// state and expect a plain-text reply prefixed CON (session continues) or
// END (session over).
type USSDHandler struct {
	logger *logrus.Logger
}

// NewUSSDHandler creates a new USSD handler
func NewUSSDHandler(logger *logrus.Logger) *USSDHandler {
	return &USSDHandler{logger: logger}
}

// Handle handles POST /api/ussd
func (h *USSDHandler) Handle(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	phoneNumber := c.PostForm("phoneNumber")
	text := c.PostForm("text")

	h.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"phone":      phoneNumber,
		"text":       text,
	}).Debug("USSD request")

	response := h.menuResponse(text)

	c.String(http.StatusOK, response)
}

func (h *USSDHandler) menuResponse(text string) string {
	// text carries the full input history joined with *
	switch {
	case text == "":
		return "CON Welcome to LandLink\n" +
			"1. Book a survey\n" +
			"2. Talk to a surveyor\n" +
			"3. About LandLink"
	case text == "1":
		return "END To book a survey, visit landlink.co.ke or call 0700 000 000. You will receive a confirmation SMS."
	case text == "2":
		return "END A surveyor will call you back shortly."
	case text == "3":
		return "END LandLink connects you with licensed land surveyors and GIS experts across Kenya."
	case strings.HasPrefix(text, "1*") || strings.HasPrefix(text, "2*") || strings.HasPrefix(text, "3*"):
		return "END Thank you for using LandLink."
	default:
		return "END Invalid choice. Please dial again."
	}
}
