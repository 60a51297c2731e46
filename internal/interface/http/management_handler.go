package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	profileapp "github.com/liljarn/gandalf/internal/application"
	"github.com/liljarn/gandalf/pkg/response"
	"github.com/liljarn/gandalf/pkg/validation"
)

// ManagementHandler backs the management surface: operator verification and
// the batch email listing. The shared token comes from configuration, never
// from a compiled-in literal.
type ManagementHandler struct {
	Svc    *profileapp.Service
	Token  string
	Logger *logrus.Logger
}

func NewManagementHandler(svc *profileapp.Service, token string, logger *logrus.Logger) *ManagementHandler {
	return &ManagementHandler{Svc: svc, Token: token, Logger: logger}
}

type managementTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Verify POST /management/verification
func (h *ManagementHandler) Verify(c *gin.Context) {
	var req managementTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if !h.tokenMatches(req.Token) {
		response.Fail(c, http.StatusForbidden, "Wrong token", nil)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"verified": true}, "manager verified", nil)
}

// Emails GET /management/emails
func (h *ManagementHandler) Emails(c *gin.Context) {
	if !h.tokenMatches(c.GetHeader("X-Management-Token")) {
		response.Fail(c, http.StatusForbidden, "Wrong token", nil)
		return
	}
	emails, err := h.Svc.ListEmails(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list emails failed")
		response.Fail(c, http.StatusInternalServerError, "failed to list emails", nil)
		return
	}
	response.OK(c, http.StatusOK, emails, "registered emails", map[string]any{"count": len(emails)})
}

func (h *ManagementHandler) tokenMatches(candidate string) bool {
	if h.Token == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(h.Token)) == 1
}
