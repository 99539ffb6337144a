package downloads

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errMissingDatabase = errors.New("database handle is required")

// LedgerConfig describes the dependencies required for the download ledger.
type LedgerConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Ledger maintains the per-user set of downloaded files.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLedger constructs the download ledger.
func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("downloads: %w", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{db: cfg.Database, logger: logger}, nil
}

// RecordIfAbsent inserts a ledger row unless one already exists for the
// (user, file) pair. Repeating the call with identical arguments is a no-op,
// not an error.
func (l *Ledger) RecordIfAbsent(ctx context.Context, userID int64, fileName string) error {
	record := Record{UserID: userID, FileName: fileName}
	err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
	if err != nil {
		return err
	}
	l.logger.Debug("download recorded",
		zap.Int64("user_id", userID), zap.String("file_name", fileName))
	return nil
}

// History returns the user's download records, oldest first.
func (l *Ledger) History(ctx context.Context, userID int64) ([]Record, error) {
	var records []Record
	if err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, file_name ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
