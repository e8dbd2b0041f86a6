package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const (
	codeBadRequest  = "BAD_REQUEST"
	codeUnavailable = "SERVICE_UNAVAILABLE"
	codeInternal    = "INTERNAL"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

// rejectionStatus сопоставляет каждой причине отказа HTTP-код.
// Новая причина без своей ветки получит 500 и будет замечена в тестах.
func rejectionStatus(kind calendar.RejectionKind) int {
	switch kind {
	case calendar.RejectClientNotFound,
		calendar.RejectProviderNotFound,
		calendar.RejectRoomNotFound,
		calendar.RejectAppointmentNotFound:
		return http.StatusNotFound
	case calendar.RejectClientDoubleBooked,
		calendar.RejectProviderDoubleBooked:
		return http.StatusConflict
	case calendar.RejectInvalidInterval,
		calendar.RejectInvalidPriority,
		calendar.RejectEmptyUpdate:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	if rej, ok := calendar.AsRejection(err); ok {
		respondError(c, rejectionStatus(rej.Kind), rej.Kind.String(), rej.Message)
		return
	}

	switch {
	case calendar.IsInfrastructure(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, calendar.ErrSerialization):
		log.Error("storage unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, codeUnavailable, "storage temporarily unavailable")

	default:
		log.Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// notFoundAs заменяет «строка не найдена» отказом нужного вида.
func notFoundAs(err error, kind calendar.RejectionKind) error {
	if errors.Is(err, calendar.ErrNotFound) {
		return calendar.Reject(kind)
	}
	return err
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid "+param+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseQueryUUID разбирает необязательный UUID из query-строки.
func parseQueryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid "+key+": must be a valid UUID")
		return nil, false
	}
	return &id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
