package store

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vigil/demo-requests/internal/demo"
)

// requestRow is the demo_requests table. Seq orders rows newest-first.
type requestRow struct {
	Seq            uint    `gorm:"primaryKey;autoIncrement"`
	RequestID      string  `gorm:"column:id;uniqueIndex;not null"`
	FullName       string  `gorm:"not null;default:''"`
	Email          string  `gorm:"not null;default:''"`
	Phone          string  `gorm:"not null;default:''"`
	Organization   string  `gorm:"not null;default:''"`
	Role           string  `gorm:"not null;default:''"`
	Cameras        string  `gorm:"not null;default:''"`
	Message        string  `gorm:"type:text;not null;default:''"`
	Status         string  `gorm:"not null;index"`
	CreatedAtISO   string  `gorm:"column:created_at;not null"`
	CreatedAtHuman string  `gorm:"column:created_at_human;not null"`
	UpdatedAtHuman *string `gorm:"column:updated_at"`
}

func (requestRow) TableName() string { return "demo_requests" }

func rowFromRequest(r demo.Request) requestRow {
	return requestRow{
		RequestID:      r.ID,
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		Organization:   r.Organization,
		Role:           r.Role,
		Cameras:        r.Cameras,
		Message:        r.Message,
		Status:         r.Status,
		CreatedAtISO:   r.CreatedAt,
		CreatedAtHuman: r.CreatedAtHuman,
		UpdatedAtHuman: r.UpdatedAt,
	}
}

func (row requestRow) request() demo.Request {
	return demo.Request{
		ID:             row.RequestID,
		FullName:       row.FullName,
		Email:          row.Email,
		Phone:          row.Phone,
		Organization:   row.Organization,
		Role:           row.Role,
		Cameras:        row.Cameras,
		Message:        row.Message,
		Status:         row.Status,
		CreatedAt:      row.CreatedAtISO,
		CreatedAtHuman: row.CreatedAtHuman,
		UpdatedAt:      row.UpdatedAtHuman,
	}
}

// OpenSQLite opens (or creates) the database at path and migrates the schema.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the demo_requests table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&requestRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SQLiteStore keeps demo requests in a gorm-managed SQLite table.
type SQLiteStore struct {
	db *gorm.DB
	options
}

// NewSQLiteStore wraps an already migrated *gorm.DB.
func NewSQLiteStore(db *gorm.DB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{db: db, options: newOptions(opts)}
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) List(ctx context.Context) []demo.Request {
	var rows []requestRow
	if err := s.db.WithContext(ctx).Order("seq DESC").Find(&rows).Error; err != nil {
		s.log.Warn().Err(err).Msg("failed to read demo requests")
		return []demo.Request{}
	}

	reqs := make([]demo.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.request())
	}
	return reqs
}

func (s *SQLiteStore) Append(ctx context.Context, fields demo.Fields) (*demo.Request, error) {
	created := demo.New(s.newID(), fields, s.now())
	row := rowFromRequest(created)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to save demo request")
		return nil, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return &created, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	var req demo.Request
	req.SetStatus(status, s.now())

	result := s.db.WithContext(ctx).Model(&requestRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     req.Status,
		"updated_at": req.UpdatedAt,
	})
	if result.Error != nil {
		s.log.Error().Err(result.Error).Str("id", id).Msg("failed to update demo request")
		return false, fmt.Errorf("%w: %w", ErrNotSaved, result.Error)
	}
	return result.RowsAffected > 0, nil
}
