package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

// StudentHandler owns the admin CRUD surface for students.
type StudentHandler struct {
	store store.Store
}

func NewStudentHandler(st store.Store) *StudentHandler {
	return &StudentHandler{store: st}
}

type studentRequest struct {
	Name       string `json:"name" binding:"required"`
	RegNo      string `json:"regNo" binding:"required"`
	Department string `json:"department" binding:"required"`
	Level      string `json:"level" binding:"required"`
	RFIDTag    string `json:"rfidTag" binding:"required"`
	Photo      string `json:"photo"`
}

func (h *StudentHandler) Create(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	student := &model.Student{
		Name:       req.Name,
		RegNo:      req.RegNo,
		Department: req.Department,
		Level:      req.Level,
		RFIDTag:    req.RFIDTag,
		Photo:      req.Photo,
	}
	if err := h.store.CreateStudent(c.Request.Context(), student); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusBadRequest, "Student with regNo or RFID tag already exists")
			return
		}
		failServer(c, err)
		return
	}
	respond(c, http.StatusCreated, "Student created successfully", student)
}

func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.store.ListStudents(c.Request.Context())
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Students fetched successfully", students)
}

func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.store.GetStudent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Student fetched successfully", student)
}

func (h *StudentHandler) Update(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	student := &model.Student{
		ID:         c.Param("id"),
		Name:       req.Name,
		RegNo:      req.RegNo,
		Department: req.Department,
		Level:      req.Level,
		RFIDTag:    req.RFIDTag,
		Photo:      req.Photo,
	}
	err := h.store.UpdateStudent(c.Request.Context(), student)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Student not found")
		return
	}
	if errors.Is(err, store.ErrDuplicate) {
		fail(c, http.StatusBadRequest, "Student with regNo or RFID tag already exists")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	updated, err := h.store.GetStudent(c.Request.Context(), student.ID)
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Student updated successfully", updated)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	err := h.store.DeleteStudent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Student deleted successfully", nil)
}
