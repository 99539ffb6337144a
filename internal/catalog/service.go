package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrEntryNotFound indicates a rating aimed at an isbn with no catalog
	// row. Callers must surface this, not swallow it as success.
	ErrEntryNotFound = errors.New("catalog: entry not found")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceError carries a machine-readable code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "catalog.service.new"
	opLookup     = "catalog.lookup"
	opList       = "catalog.list"
	opRate       = "catalog.rate"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies required for catalog queries and
// rating aggregation.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service answers catalog queries and applies rating updates.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// Lookup returns the first entry whose isbn exactly matches term, or whose
// title or author equals term ignoring case. No match is a valid empty
// result, not an error.
func (s *Service) Lookup(ctx context.Context, term string) (*Entry, error) {
	folded := strings.ToUpper(strings.TrimSpace(term))

	var entry Entry
	err := s.db.WithContext(ctx).
		Where("isbn = ? OR UPPER(title) = ? OR UPPER(author) = ?",
			strings.TrimSpace(term), folded, folded).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logError(opLookup, "query_failed", err)
		return nil, newServiceError(opLookup, "query_failed", err)
	}
	return &entry, nil
}

// List returns every catalog entry ordered ascending by the sort key. The
// key is whitelisted through ParseSortKey so it never reaches the query as
// raw request input.
func (s *Service) List(ctx context.Context, key SortKey) ([]Entry, error) {
	column := string(ParseSortKey(string(key)))

	var entries []Entry
	if err := s.db.WithContext(ctx).
		Order(column + " ASC").
		Find(&entries).Error; err != nil {
		s.logError(opList, "query_failed", err, zap.String("sort_key", column))
		return nil, newServiceError(opList, "query_failed", err)
	}
	return entries, nil
}

// Rate folds one rating into the entry's running aggregate. The read and the
// write run inside one transaction with a row lock so two concurrent ratings
// on the same isbn cannot both observe the same before-state and drop an
// update. The first rating becomes the average verbatim; there is never a
// division by a zero count.
func (s *Service) Rate(ctx context.Context, isbn string, rating int) error {
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry Entry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("isbn = ?", isbn).
			Take(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			s.logError(opRate, "entry_select_failed", err, zap.String("isbn", isbn))
			return newServiceError(opRate, "entry_select_failed", err)
		}

		if entry.NumReviews == 0 {
			entry.CumulativeRating = float64(rating)
			entry.NumReviews = 1
			entry.Rating = float64(rating)
		} else {
			entry.CumulativeRating += float64(rating)
			entry.NumReviews++
			entry.Rating = entry.CumulativeRating / float64(entry.NumReviews)
		}

		updates := map[string]interface{}{
			"cumulative_rating": entry.CumulativeRating,
			"num_reviews":       entry.NumReviews,
			"rating":            entry.Rating,
		}
		if err := tx.Model(&Entry{}).Where("isbn = ?", isbn).Updates(updates).Error; err != nil {
			s.logError(opRate, "entry_update_failed", err, zap.String("isbn", isbn))
			return newServiceError(opRate, "entry_update_failed", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.logger.Debug("rating applied", zap.String("isbn", isbn), zap.Int("rating", rating))
	return nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("catalog service error", attrs...)
}
