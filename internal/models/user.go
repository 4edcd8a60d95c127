package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user account can hold. Superusers are admins whose IsSuperuser
// flag is additionally set; both pass the admin permission checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"date_joined"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"size:150;not null;uniqueIndex;check:username_not_me,username <> 'me'" json:"username"`
	Email        string         `gorm:"size:254;not null;uniqueIndex" json:"email"`
	FirstName    string         `gorm:"size:150" json:"first_name"`
	LastName     string         `gorm:"size:150" json:"last_name"`
	Role         string         `gorm:"size:60;not null;default:'user'" json:"-"`
	IsSuperuser  bool           `gorm:"not null;default:false" json:"-"`
	AvatarURL    string         `gorm:"size:255;default:'/media/avatars/default.png'" json:"avatar"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.IsSuperuser {
		u.Role = RoleAdmin
	}
	return nil
}

// IsAdmin reports whether the user passes the admin permission checks.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}
