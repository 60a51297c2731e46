package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liljarn/gandalf/internal/container"
	handlers "github.com/liljarn/gandalf/internal/interface/http"
	"github.com/liljarn/gandalf/internal/interface/middleware"
)

// ManagementModule exposes the operator verification endpoint and the batch
// email listing. Rate limited per IP, private addresses bypass the limiter.
type ManagementModule struct {
	Handler *handlers.ManagementHandler
}

func NewManagementModule(h *handlers.ManagementHandler) *ManagementModule {
	return &ManagementModule{Handler: h}
}

func (m *ManagementModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	mgmt := rg.Group("/management")
	mgmt.POST("/verification", rl, m.Handler.Verify)
	mgmt.GET("/emails", rl, m.Handler.Emails)
}
