package model

import "time"

// Roles known to the system. The scanner device authenticates as nobody at all.
const (
	RoleAdmin    = "admin"
	RoleLecturer = "lecturer"
)

// StatusPresent is the only status ever written by the scanning paths.
// Absence is derived at query time, never stored.
const StatusPresent = "Present"

// Student carries an RFID tag and is resolved by exact tag lookup.
type Student struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	RegNo      string    `db:"reg_no" json:"regNo"`
	Department string    `db:"department" json:"department"`
	Level      string    `db:"level" json:"level"`
	RFIDTag    string    `db:"rfid_tag" json:"rfidTag"`
	Photo      string    `db:"photo" json:"photo"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Course is identified by a unique code and has exactly one assigned lecturer.
type Course struct {
	ID          string    `db:"id" json:"id"`
	CourseCode  string    `db:"course_code" json:"courseCode"`
	CourseTitle string    `db:"course_title" json:"courseTitle"`
	LecturerID  string    `db:"lecturer_id" json:"lecturerId"`
	Department  string    `db:"department" json:"department"`
	Level       string    `db:"level" json:"level"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// User is an admin or lecturer account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Session is one open attendance window for a course. At most one session per
// course may be active at a time; once flipped inactive it is immutable history.
type Session struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"courseId"`
	LecturerID  string    `db:"lecturer_id" json:"lecturerId"`
	SessionDate time.Time `db:"session_date" json:"sessionDate"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// AttendanceRecord is the fact that a student was present for a session of a
// course. SessionID is nil for records written by the kiosk scan path, which
// deduplicates by calendar day instead of session.
type AttendanceRecord struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	CourseID  string    `db:"course_id" json:"courseId"`
	SessionID *string   `db:"session_id" json:"sessionId,omitempty"`
	Date      time.Time `db:"date" json:"date"`
	TimeIn    string    `db:"time_in" json:"timeIn"`
	Status    string    `db:"status" json:"status"`
	RFIDTag   string    `db:"rfid_tag" json:"rfidTag"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AuditEvent is a fire-and-forget record of a user-management mutation.
type AuditEvent struct {
	ID        string    `db:"id" json:"id"`
	ActorID   string    `db:"actor_id" json:"actorId"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StudentRef is the student context attached to enriched reads.
type StudentRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RegNo      string `json:"regNo"`
	Department string `json:"department"`
	Level      string `json:"level"`
	Photo      string `json:"photo"`
}

// CourseRef is the course context attached to enriched reads.
type CourseRef struct {
	ID          string `json:"id"`
	CourseCode  string `json:"courseCode"`
	CourseTitle string `json:"courseTitle"`
}

// LecturerRef is the lecturer context attached to enriched reads.
type LecturerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AttendanceDetail is an attendance record enriched with display context.
type AttendanceDetail struct {
	AttendanceRecord
	Student *StudentRef `json:"student,omitempty"`
	Course  *CourseRef  `json:"course,omitempty"`
	Session *Session    `json:"session,omitempty"`
}

// SessionDetail is a session enriched with course/lecturer context and a live
// attendee count.
type SessionDetail struct {
	Session
	Course         *CourseRef   `json:"course,omitempty"`
	Lecturer       *LecturerRef `json:"lecturer,omitempty"`
	AttendeesCount int          `json:"attendeesCount"`
}

// CourseAttendance is a per-course present count for a day range.
type CourseAttendance struct {
	CourseID    string `db:"course_id" json:"courseId"`
	CourseCode  string `db:"course_code" json:"courseCode"`
	CourseTitle string `db:"course_title" json:"courseTitle"`
	Count       int    `db:"cnt" json:"count"`
}

// DepartmentCount is a per-department student count.
type DepartmentCount struct {
	Department string `db:"department" json:"department"`
	Count      int    `db:"cnt" json:"count"`
}

// Overview is the admin dashboard statistics object.
//
// absentToday and avgAttendance are deliberately coarse: they treat every
// student as expected at every session. Known approximation, kept for the
// dashboard's existing consumers.
type Overview struct {
	TotalStudents         int                `json:"totalStudents"`
	TotalCourses          int                `json:"totalCourses"`
	TotalLecturers        int                `json:"totalLecturers"`
	PresentToday          int                `json:"presentToday"`
	AbsentToday           int                `json:"absentToday"`
	SessionsToday         int                `json:"sessionsToday"`
	AvgAttendance         float64            `json:"avgAttendance"`
	AttendanceByCourse    []CourseAttendance `json:"attendanceByCourse"`
	StudentsByDepartment  []DepartmentCount  `json:"studentsByDepartment"`
	CurrentActiveSessions []SessionDetail    `json:"currentActiveSessions"`
	RecentSessions        []SessionDetail    `json:"recentSessions"`
}
