package users

import "time"

// User is one registered account. Accounts are created at registration and
// never updated or deleted afterwards.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName    string    `gorm:"column:first_name;size:190;not null"`
	LastName     string    `gorm:"column:last_name;size:190;not null"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:128;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing registered accounts.
func (User) TableName() string {
	return "users"
}
