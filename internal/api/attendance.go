package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tagtrack/internal/attendance"
	"tagtrack/internal/metrics"
	"tagtrack/internal/store"
)

// AttendanceHandler covers the session-bound marking flow plus the
// admin read/maintenance endpoints.
type AttendanceHandler struct {
	attendance *attendance.Service
}

func NewAttendanceHandler(svc *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{attendance: svc}
}

type markRequest struct {
	RFIDTag   string `json:"rfidTag" binding:"required"`
	CourseID  string `json:"courseId" binding:"required"`
	SessionID string `json:"sessionId" binding:"required"`
}

func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ScansTotal.WithLabelValues("session", "invalid").Inc()
		failBinding(c, err)
		return
	}

	detail, err := h.attendance.Mark(c.Request.Context(), req.RFIDTag, req.CourseID, req.SessionID)
	switch {
	case errors.Is(err, attendance.ErrStudentNotFound):
		metrics.ScansTotal.WithLabelValues("session", "unknown_tag").Inc()
		fail(c, http.StatusNotFound, "Student with this RFID tag not found")
		return
	case errors.Is(err, attendance.ErrCourseNotFound):
		metrics.ScansTotal.WithLabelValues("session", "unknown_course").Inc()
		fail(c, http.StatusNotFound, "Course not found")
		return
	case errors.Is(err, attendance.ErrSessionRequired):
		metrics.ScansTotal.WithLabelValues("session", "invalid").Inc()
		fail(c, http.StatusBadRequest, "Session id is required")
		return
	case errors.Is(err, attendance.ErrDuplicate):
		metrics.ScansTotal.WithLabelValues("session", "duplicate").Inc()
		fail(c, http.StatusBadRequest, "Attendance already marked for this session")
		return
	case err != nil:
		metrics.ScansTotal.WithLabelValues("session", "error").Inc()
		failServer(c, err)
		return
	}

	metrics.ScansTotal.WithLabelValues("session", "recorded").Inc()
	respond(c, http.StatusCreated, "Attendance marked successfully", detail)
}

func (h *AttendanceHandler) ByCourse(c *gin.Context) {
	records, err := h.attendance.ByCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Attendance fetched successfully", records)
}

func (h *AttendanceHandler) ByStudent(c *gin.Context) {
	records, err := h.attendance.ByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Attendance fetched successfully", records)
}

func (h *AttendanceHandler) ByDate(c *gin.Context) {
	day, err := time.ParseInLocation("2006-01-02", c.Param("date"), time.Local)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	records, err := h.attendance.ByDate(c.Request.Context(), day)
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Attendance fetched successfully", records)
}

type updateAttendanceRequest struct {
	Status string `json:"status" binding:"required"`
	TimeIn string `json:"timeIn"`
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	updated, err := h.attendance.Update(c.Request.Context(), c.Param("id"), req.Status, req.TimeIn)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Attendance record not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Attendance updated successfully", updated)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	err := h.attendance.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Attendance record not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Attendance deleted successfully", nil)
}
