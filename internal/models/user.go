package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleDean    UserRole = "dean"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDean, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage tests and results.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleDean || r == RoleTeacher
}

// User mirrors the Casdoor account this service consumes. The ID is the
// Casdoor user ID and is stored as-is on rows this user creates.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;size:255"`
	Name      string         `json:"name" gorm:"size:255;not null"`
	Email     string         `json:"email" gorm:"size:255;uniqueIndex"`
	Role      UserRole       `json:"role" gorm:"size:20;not null;default:'student'"`
	AvatarURL *string        `json:"avatar_url,omitempty" gorm:"size:500"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentExpelled StudentStatus = "expelled"
	StudentOnLeave  StudentStatus = "on_leave"
	StudentGraduate StudentStatus = "graduated"
)

// CameraMode is the per-student proctoring override. CameraDefault defers
// to the camera_required_globally setting.
type CameraMode string

const (
	CameraRequired    CameraMode = "required"
	CameraNotRequired CameraMode = "not_required"
	CameraDefault     CameraMode = "default"
)

// Group is an academic group students belong to; tests are assigned to groups.
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Course    int       `json:"course" gorm:"default:1"`
	Direction string    `json:"direction" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Group) TableName() string {
	return "groups"
}

// Student is the academic profile behind a user account. A user without a
// Student row cannot start exams.
type Student struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	UserID     string        `json:"user_id" gorm:"size:255;not null;uniqueIndex"`
	StudentID  string        `json:"student_id" gorm:"size:50;not null;uniqueIndex"`
	FullName   string        `json:"full_name" gorm:"size:255;not null"`
	GroupID    *uint         `json:"group_id,omitempty" gorm:"index"`
	Phone      *string       `json:"phone,omitempty" gorm:"size:20"`
	Status     StudentStatus `json:"status" gorm:"size:20;not null;default:'active'"`
	CameraMode CameraMode    `json:"camera_mode" gorm:"size:20;not null;default:'default'"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Relationships
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

func (Student) TableName() string {
	return "students"
}
