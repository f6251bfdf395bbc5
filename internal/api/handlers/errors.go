package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/api/middleware"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

// respondError maps service failures onto HTTP statuses. Storage and other
// unexpected failures are logged and reported without detail.
func respondError(c *gin.Context, message string, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.SendError(c, http.StatusBadRequest, message, validationErr)
	case errors.Is(err, services.ErrValidation):
		utils.SendError(c, http.StatusBadRequest, message, err)
	case errors.Is(err, services.ErrNotFound):
		utils.SendError(c, http.StatusNotFound, message, err)
	case errors.Is(err, services.ErrConflict):
		utils.SendError(c, http.StatusConflict, message, err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.SendError(c, http.StatusUnauthorized, message, err)
	default:
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"path":       c.FullPath(),
		}).WithError(err).Error(message)
		utils.SendInternalError(c, message)
	}
}

func bindingError(c *gin.Context, err error) {
	utils.SendValidationError(c, utils.FormatBindingError(err))
}

// currentUser returns the caller resolved by AuthMiddleware, aborting with 401
// when it is missing.
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.SendUnauthorized(c, "Authentication required")
		c.Abort()
	}
	return userID, ok
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.SendValidationError(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		utils.SendValidationError(c, name+" must be a number")
		return 0, false
	}
	return value, true
}
