package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/middleware"
	"github.com/codeladder/exam-backend/internal/model"
	"github.com/codeladder/exam-backend/internal/response"
	"github.com/codeladder/exam-backend/internal/service"
	"github.com/codeladder/exam-backend/internal/validator"
)

// AttemptHandler serves the HTTP side of the attempt lifecycle: starting an
// attempt and reading its state. The live session itself runs over the
// WebSocket stream.
type AttemptHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		log:      log.With().Str("component", "attempt_handler").Logger(),
	}
}

// StartAttempt handles POST /api/v1/student/attempts.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}
	examSetID, err := uuid.Parse(req.ExamSetID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attempts.Start(c.Request.Context(), claims.UserID, examSetID)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, attempt)
}

// GetAttempt handles GET /api/v1/student/attempts/:attempt_id. Returns the
// full snapshot, for ended attempts too.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snapshot, err := h.attempts.GetSnapshot(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, snapshot)
}

func (h *AttemptHandler) failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamSetNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamSetNotFound)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrUnauthorizedAccess):
		response.Fail(c, http.StatusForbidden, response.ErrUnauthorizedAccess)
	case errors.Is(err, service.ErrAttemptLimitReached):
		response.Fail(c, http.StatusConflict, response.ErrAttemptLimitReached)
	case errors.Is(err, service.ErrAttemptInProgress):
		response.Fail(c, http.StatusConflict, response.ErrAttemptInProgress)
	case errors.Is(err, service.ErrExamEnded):
		response.Fail(c, http.StatusConflict, response.ErrExamAlreadyEnded)
	default:
		h.log.Error().Err(err).Msg("attempt operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
