package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tagtrack/internal/audit"
	"tagtrack/internal/auth"
	"tagtrack/internal/model"
	"tagtrack/internal/report"
	"tagtrack/internal/stats"
	"tagtrack/internal/store"
)

const auditListLimit = 100

// AdminHandler serves the dashboard, report exports, user management and the
// audit trail. All routes behind it require the admin role.
type AdminHandler struct {
	store   store.Store
	stats   *stats.Service
	auditor *audit.Recorder
}

func NewAdminHandler(st store.Store, statsSvc *stats.Service, auditor *audit.Recorder) *AdminHandler {
	return &AdminHandler{store: st, stats: statsSvc, auditor: auditor}
}

func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.stats.Overview(c.Request.Context(), time.Now())
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard fetched successfully", overview)
}

// reportRecords resolves the shared courseId/date query filters for both
// export formats. A date filters to that local calendar day.
func (h *AdminHandler) reportRecords(c *gin.Context) ([]model.AttendanceDetail, bool) {
	courseID := c.Query("courseId")

	var from, to *time.Time
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return nil, false
		}
		f, t := stats.DayRange(day)
		from, to = &f, &t
	}

	records, err := h.store.ListAttendanceFiltered(c.Request.Context(), courseID, from, to)
	if err != nil {
		failServer(c, err)
		return nil, false
	}
	return records, true
}

func (h *AdminHandler) ExportCSV(c *gin.Context) {
	records, ok := h.reportRecords(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("attendance-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv")
	if err := report.WriteCSV(c.Writer, records); err != nil {
		_ = c.Error(err)
	}
}

func (h *AdminHandler) ExportXLSX(c *gin.Context) {
	records, ok := h.reportRecords(c)
	if !ok {
		return
	}

	f, err := report.BuildXLSX(records)
	if err != nil {
		failServer(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Users fetched successfully", users)
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin lecturer"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		failServer(c, err)
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusBadRequest, "User already exists")
			return
		}
		failServer(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), actorID(c), "user.create",
		fmt.Sprintf("created %s user %s", user.Role, user.Email))
	respond(c, http.StatusCreated, "User created successfully", user)
}

type updateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin lecturer"`
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			failServer(c, err)
			return
		}
		user.PasswordHash = string(hash)
	}

	err = h.store.UpdateUser(c.Request.Context(), user)
	if errors.Is(err, store.ErrDuplicate) {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), actorID(c), "user.update",
		fmt.Sprintf("updated user %s", user.Email))
	respond(c, http.StatusOK, "User updated successfully", user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	err := h.store.DeleteUser(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}

	h.auditor.Record(c.Request.Context(), actorID(c), "user.delete",
		fmt.Sprintf("deleted user %s", id))
	respond(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *AdminHandler) AuditLogs(c *gin.Context) {
	limit := auditListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	events, err := h.store.ListAuditEvents(c.Request.Context(), limit)
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Audit logs fetched successfully", events)
}

func actorID(c *gin.Context) string {
	if claims, ok := auth.CurrentClaims(c); ok {
		return claims.Subject
	}
	return ""
}
