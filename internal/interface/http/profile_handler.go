package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	profileapp "github.com/liljarn/gandalf/internal/application"
	"github.com/liljarn/gandalf/internal/domain/client"
	"github.com/liljarn/gandalf/internal/domain/entity"
	"github.com/liljarn/gandalf/internal/domain/repository"
	"github.com/liljarn/gandalf/internal/interface/middleware"
	"github.com/liljarn/gandalf/pkg/response"
	"github.com/liljarn/gandalf/pkg/validation"
)

const maxPhotoBytes = 10 << 20 // 10 MiB

type ProfileHandler struct {
	Svc    *profileapp.Service
	Logger *logrus.Logger
}

func NewProfileHandler(svc *profileapp.Service, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type createProfileRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	BirthDate string `json:"birth_date" binding:"required,birthdate"`
}

type editProfileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,pwd"`
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1"`
	BirthDate *string `json:"birth_date" binding:"omitempty,birthdate"`
}

// Register POST /user/profile
func (h *ProfileHandler) Register(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	birthDate, _ := time.Parse(entity.BirthDateLayout, req.BirthDate)

	view, err := h.Svc.CreateProfile(c.Request.Context(), profileapp.CreateProfileInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
	})
	if err != nil {
		if errors.Is(err, profileapp.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, "email already taken", nil)
			return
		}
		h.Logger.WithError(err).WithField("email", req.Email).Error("create profile failed")
		response.Fail(c, http.StatusInternalServerError, "failed to create profile", nil)
		return
	}
	response.OK(c, http.StatusCreated, view, "profile created", nil)
}

// GetSelf GET /user/profile/self
func (h *ProfileHandler) GetSelf(c *gin.Context) {
	id, ok := h.callerID(c)
	if !ok {
		return
	}
	h.respondProfile(c, id)
}

// GetByUUID GET /user/profile/:uuid
func (h *ProfileHandler) GetByUUID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid uuid", nil)
		return
	}
	h.respondProfile(c, id)
}

func (h *ProfileHandler) respondProfile(c *gin.Context, id uuid.UUID) {
	view, err := h.Svc.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, profileapp.ErrProfileNotFound) {
			response.Fail(c, http.StatusNotFound, "profile not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("uuid", id).Error("get profile failed")
		response.Fail(c, http.StatusInternalServerError, "failed to load profile", nil)
		return
	}
	response.OK(c, http.StatusOK, view, "profile", nil)
}

// Edit PUT /user/profile/self
func (h *ProfileHandler) Edit(c *gin.Context) {
	id, ok := h.callerID(c)
	if !ok {
		return
	}
	var req editProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := profileapp.EditProfileInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.BirthDate != nil {
		birthDate, _ := time.Parse(entity.BirthDateLayout, *req.BirthDate)
		in.BirthDate = &birthDate
	}

	if err := h.Svc.EditProfile(c.Request.Context(), id, in); err != nil {
		h.respondEditError(c, id, err, "edit profile failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// EditPhoto PUT /user/profile/self/photo
func (h *ProfileHandler) EditPhoto(c *gin.Context) {
	id, ok := h.callerID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("profile_image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "profile_image file is required", nil)
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, "image larger than "+strconv.Itoa(maxPhotoBytes)+" bytes", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "unreadable upload", nil)
		return
	}
	defer func() { _ = file.Close() }()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := h.Svc.EditProfilePhoto(c.Request.Context(), id, file, fileHeader.Filename, contentType); err != nil {
		h.respondEditError(c, id, err, "edit profile photo failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePhoto DELETE /user/profile/self/photo
func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	id, ok := h.callerID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteProfilePhoto(c.Request.Context(), id); err != nil {
		h.respondEditError(c, id, err, "delete profile photo failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /user/search?q=&size=
func (h *ProfileHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchProfiles(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("q", q).Error("profile search failed")
		response.Fail(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.OK(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *ProfileHandler) callerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProfileHandler) respondEditError(c *gin.Context, id uuid.UUID, err error, logMsg string) {
	switch {
	case errors.Is(err, profileapp.ErrProfileNotFound):
		response.Fail(c, http.StatusNotFound, "profile not found", nil)
	case errors.Is(err, profileapp.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, "email already taken", nil)
	case errors.Is(err, repository.ErrVersionConflict):
		response.Fail(c, http.StatusConflict, "profile was modified concurrently, retry", nil)
	case errors.Is(err, client.ErrStorageUnavailable):
		h.Logger.WithError(err).WithField("uuid", id).Error(logMsg)
		response.Fail(c, http.StatusBadGateway, "image storage unavailable", nil)
	default:
		h.Logger.WithError(err).WithField("uuid", id).Error(logMsg)
		response.Fail(c, http.StatusInternalServerError, "failed to update profile", nil)
	}
}
