package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

// CourseHandler owns the CRUD surface for courses.
type CourseHandler struct {
	store store.Store
}

func NewCourseHandler(st store.Store) *CourseHandler {
	return &CourseHandler{store: st}
}

type courseRequest struct {
	CourseCode  string `json:"courseCode" binding:"required"`
	CourseTitle string `json:"courseTitle" binding:"required"`
	LecturerID  string `json:"lecturerId" binding:"required"`
	Department  string `json:"department" binding:"required"`
	Level       string `json:"level" binding:"required"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	course := &model.Course{
		CourseCode:  req.CourseCode,
		CourseTitle: req.CourseTitle,
		LecturerID:  req.LecturerID,
		Department:  req.Department,
		Level:       req.Level,
	}
	if err := h.store.CreateCourse(c.Request.Context(), course); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusBadRequest, "Course with this code already exists")
			return
		}
		failServer(c, err)
		return
	}
	respond(c, http.StatusCreated, "Course created successfully", course)
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.store.ListCourses(c.Request.Context())
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Courses fetched successfully", courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.store.GetCourse(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Course fetched successfully", course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	course := &model.Course{
		ID:          c.Param("id"),
		CourseCode:  req.CourseCode,
		CourseTitle: req.CourseTitle,
		LecturerID:  req.LecturerID,
		Department:  req.Department,
		Level:       req.Level,
	}
	err := h.store.UpdateCourse(c.Request.Context(), course)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Course not found")
		return
	}
	if errors.Is(err, store.ErrDuplicate) {
		fail(c, http.StatusBadRequest, "Course with this code already exists")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	updated, err := h.store.GetCourse(c.Request.Context(), course.ID)
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Course updated successfully", updated)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	err := h.store.DeleteCourse(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Course deleted successfully", nil)
}
