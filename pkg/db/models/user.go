package models

import "time"

// User is the minimal account projection the tweet domain needs: author
// identity and visibility targets. Follows, mutes and blocks live in the
// account service and are not modeled here.
type User struct {
	ID         int64      `gorm:"primaryKey;column:id"`
	Name       string     `gorm:"column:name;not null"`
	Username   string     `gorm:"column:username;not null;uniqueIndex"`
	Protected  bool       `gorm:"column:protected;default:false"`
	VerifiedAt *time.Time `gorm:"column:verified_at"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsVerified reports whether the account carries a verification badge.
func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}
