package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRowID is the primary key of the single row holding the document.
const documentRowID = 1

// DocumentRecord is the row the PostgreSQL adapter stores. The document
// itself is a jsonb blob; the other columns exist for operators running SQL
// against the table.
type DocumentRecord struct {
	ID           uint           `gorm:"primaryKey"`
	Document     string         `gorm:"type:jsonb;not null"`
	RoomIDs      pq.StringArray `gorm:"type:text[]"`
	MessageCount int
	SavedAt      time.Time
}

func (DocumentRecord) TableName() string { return "chat_documents" }

// PostgresStorage keeps the document in one row, replaced inside a
// transaction on every save.
type PostgresStorage struct {
	DB *gorm.DB
}

// OpenPostgres connects with dsn and migrates the document table.
func OpenPostgres(dsn string) (*PostgresStorage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s, err := NewPostgresStorage(db)
	if err != nil {
		return nil, err
	}
	log.Println("INFO: PostgreSQL connection established, migrations complete.")
	return s, nil
}

func NewPostgresStorage(db *gorm.DB) (*PostgresStorage, error) {
	if err := db.AutoMigrate(&DocumentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate chat_documents: %w", err)
	}
	return &PostgresStorage{DB: db}, nil
}

func (s *PostgresStorage) Load(ctx context.Context) (*models.Snapshot, error) {
	var rec DocumentRecord
	err := s.DB.WithContext(ctx).First(&rec, documentRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("load document", err)
	}
	return decodeSnapshot([]byte(rec.Document))
}

func (s *PostgresStorage) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	rec := DocumentRecord{
		ID:           documentRowID,
		Document:     string(data),
		RoomIDs:      pq.StringArray(snap.RoomIDs()),
		MessageCount: len(snap.Messages),
		SavedAt:      snap.SavedAt,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to save document: %v", err)
		return apperr.StoreUnavailable("save document", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
