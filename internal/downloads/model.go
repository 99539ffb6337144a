package downloads

import "time"

// Record marks that a user has downloaded a file at least once. The table is
// a de-duplicated set keyed on (user_id, file_name), not a log of every
// download event.
type Record struct {
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false;not null"`
	FileName  string    `gorm:"column:file_name;primaryKey;size:190;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing the download ledger.
func (Record) TableName() string {
	return "downloads"
}
