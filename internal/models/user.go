package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// IsAdmin treats ADMIN and SUPERADMIN as equivalent
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) Valid() bool {
	return r == RoleStudent || r.IsAdmin()
}

type User struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	StudentID    *string   `json:"studentId,omitempty" gorm:"column:student_number;type:varchar(100)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);default:'STUDENT';index;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// UserSummary is the public projection of a user embedded in complaint
// responses. The student number lives in student_number: GORM matches
// foreign keys by column name too, and a student_id column here would turn
// Complaint.Student into a has-one.
type UserSummary struct {
	ID            string  `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name          string  `json:"name" gorm:"type:varchar(255);not null"`
	Email         string  `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	StudentNumber *string `json:"studentId,omitempty" gorm:"column:student_number;type:varchar(100)"`
}

func (UserSummary) TableName() string {
	return "users"
}
