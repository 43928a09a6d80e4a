package models

import "time"

type RecruiterRole string

const (
	RoleRecruiter RecruiterRole = "recruiter"
	RoleAdmin     RecruiterRole = "admin"
)

type Recruiter struct {
	ID           string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string        `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	Name         string        `gorm:"column:name;type:text" json:"name"`
	PasswordHash string        `gorm:"column:password_hash;type:text" json:"-"`
	Role         RecruiterRole `gorm:"column:role;type:text" json:"role"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Recruiter) TableName() string { return "recruiters" }
