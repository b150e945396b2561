package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('student','teacher','admin');default:'student'" json:"role"`
	Language  string    `gorm:"size:10;default:'en'" json:"language"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// swagger:model Course
type Course struct {
	BaseModel
	Name      string `gorm:"size:255;not null" json:"name"`
	ShortName string `gorm:"size:100" json:"shortName"`
	Visible   bool   `gorm:"default:true" json:"visible"`
}

func (Course) TableName() string {
	return "courses"
}
