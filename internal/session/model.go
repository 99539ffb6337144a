package session

import "time"

// AuthToken links an opaque session token to a user id. A user may hold any
// number of live tokens; rows are removed only by an explicit logout.
type AuthToken struct {
	Token     string    `gorm:"column:token;primaryKey;size:64;not null"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing session tokens.
func (AuthToken) TableName() string {
	return "auth_tokens"
}

// Identity is the per-request view of the caller. The zero value is the
// anonymous identity; anonymous is a valid outcome, not an error.
type Identity struct {
	UserID    int64
	Email     string
	FirstName string
	LoggedIn  bool
}
