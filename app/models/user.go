package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"

	DefaultAvatar = "/static/uploads/default_avatar.png"

	// RecoverySlots is the number of security questions a user may answer.
	RecoverySlots = 7
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;not null" json:"username"`
	Email        string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:200;not null" json:"-"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Address      string    `gorm:"type:text" json:"address"`
	Pincode      string    `gorm:"size:10" json:"pincode"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	Ans1         string    `gorm:"size:100" json:"-"`
	Ans2         string    `gorm:"size:100" json:"-"`
	Ans3         string    `gorm:"size:100" json:"-"`
	Ans4         string    `gorm:"size:100" json:"-"`
	Ans5         string    `gorm:"size:100" json:"-"`
	Ans6         string    `gorm:"size:100" json:"-"`
	Ans7         string    `gorm:"size:100" json:"-"`
	ProfilePic   string    `gorm:"size:500" json:"profile_pic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.ProfilePic == "" {
		u.ProfilePic = DefaultAvatar
	}
	return
}

// RecoveryAnswers returns the stored answers in question order.
func (u *User) RecoveryAnswers() [RecoverySlots]string {
	return [RecoverySlots]string{u.Ans1, u.Ans2, u.Ans3, u.Ans4, u.Ans5, u.Ans6, u.Ans7}
}

func (u *User) SetRecoveryAnswers(a [RecoverySlots]string) {
	u.Ans1, u.Ans2, u.Ans3, u.Ans4, u.Ans5, u.Ans6, u.Ans7 = a[0], a[1], a[2], a[3], a[4], a[5], a[6]
}
