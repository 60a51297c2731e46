package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liljarn/gandalf/internal/container"
	handlers "github.com/liljarn/gandalf/internal/interface/http"
	"github.com/liljarn/gandalf/internal/interface/middleware"
	"github.com/liljarn/gandalf/pkg/helpers"
)

// ProfileModule wires the profile HTTP handlers and bearer-token middleware.
// Public: POST /user/profile, GET /user/profile/:uuid, GET /user/search
// Protected: GET/PUT /user/profile/self, PUT/DELETE /user/profile/self/photo

type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	readLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	user := rg.Group("/user")
	user.POST("/profile", registerLimiter, m.Handler.Register)
	user.GET("/profile/:uuid", readLimiter, m.Handler.GetByUUID)
	user.GET("/search", readLimiter, m.Handler.Search)

	self := user.Group("/profile/self")
	self.Use(middleware.Auth(m.JWT))
	self.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		self.GET("", m.Handler.GetSelf)
		self.PUT("", m.Handler.Edit)
		self.PUT("/photo", m.Handler.EditPhoto)
		self.DELETE("/photo", m.Handler.DeletePhoto)
	}
}
