package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tagtrack/internal/attendance"
	"tagtrack/internal/metrics"
)

// ScanHandler is the unauthenticated kiosk endpoint: tap a tag, get a
// confirmation with the student's name and photo.
type ScanHandler struct {
	attendance *attendance.Service
}

func NewScanHandler(svc *attendance.Service) *ScanHandler {
	return &ScanHandler{attendance: svc}
}

type scanRequest struct {
	RFIDTag  string `json:"rfidTag" binding:"required"`
	CourseID string `json:"courseId" binding:"required"`
}

func (h *ScanHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ScansTotal.WithLabelValues("kiosk", "invalid").Inc()
		failBinding(c, err)
		return
	}

	detail, err := h.attendance.Scan(c.Request.Context(), req.RFIDTag, req.CourseID)
	switch {
	case errors.Is(err, attendance.ErrStudentNotFound):
		metrics.ScansTotal.WithLabelValues("kiosk", "unknown_tag").Inc()
		fail(c, http.StatusNotFound, "Student with this RFID tag not found")
		return
	case errors.Is(err, attendance.ErrCourseNotFound):
		metrics.ScansTotal.WithLabelValues("kiosk", "unknown_course").Inc()
		fail(c, http.StatusNotFound, "Course not found")
		return
	case errors.Is(err, attendance.ErrAlreadyMarkedToday):
		metrics.ScansTotal.WithLabelValues("kiosk", "duplicate").Inc()
		fail(c, http.StatusBadRequest, "Attendance already marked for today")
		return
	case err != nil:
		metrics.ScansTotal.WithLabelValues("kiosk", "error").Inc()
		failServer(c, err)
		return
	}

	metrics.ScansTotal.WithLabelValues("kiosk", "recorded").Inc()
	respond(c, http.StatusCreated, "Attendance recorded", gin.H{
		"student": detail.Student,
		"timeIn":  detail.TimeIn,
		"date":    detail.Date,
		"status":  detail.Status,
	})
}
