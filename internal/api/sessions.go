package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tagtrack/internal/auth"
	"tagtrack/internal/metrics"
	"tagtrack/internal/session"
)

// SessionHandler exposes the session lifecycle to lecturers and admins.
type SessionHandler struct {
	sessions *session.Service
}

func NewSessionHandler(svc *session.Service) *SessionHandler {
	return &SessionHandler{sessions: svc}
}

type startSessionRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	var lecturerID string
	if claims, ok := auth.CurrentClaims(c); ok {
		lecturerID = claims.Subject
	}

	detail, err := h.sessions.Open(c.Request.Context(), req.CourseID, lecturerID)
	if errors.Is(err, session.ErrConflict) {
		fail(c, http.StatusBadRequest, "An active session already exists for this course")
		return
	}
	if errors.Is(err, session.ErrCourseRequired) {
		fail(c, http.StatusBadRequest, "Course id is required")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}

	metrics.SessionsOpenedTotal.Inc()
	respond(c, http.StatusCreated, "Session started successfully", detail)
}

func (h *SessionHandler) End(c *gin.Context) {
	sess, err := h.sessions.End(c.Request.Context(), c.Param("id"))
	if errors.Is(err, session.ErrNotFound) {
		fail(c, http.StatusNotFound, "Session not found")
		return
	}
	if errors.Is(err, session.ErrAlreadyEnded) {
		fail(c, http.StatusBadRequest, "Session already ended")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Session ended successfully", sess)
}

func (h *SessionHandler) Active(c *gin.Context) {
	sessions, err := h.sessions.Active(c.Request.Context())
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Active sessions fetched successfully", sessions)
}

func (h *SessionHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	sessions, err := h.sessions.Recent(c.Request.Context(), limit)
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Recent sessions fetched successfully", sessions)
}
