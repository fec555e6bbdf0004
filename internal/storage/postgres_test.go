package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	selectDocument = `SELECT \* FROM "chat_documents" WHERE "chat_documents"."id" = \$1`
	upsertDocument = `INSERT INTO "chat_documents" .* ON CONFLICT \("id"\) DO UPDATE SET .*"document"="excluded"."document"`
)

// newMockPostgres returns an adapter over a sqlmock connection. The table is
// assumed to exist, so no migration runs.
func newMockPostgres(t *testing.T) (*storage.PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &storage.PostgresStorage{DB: db}, mock
}

func TestDocumentRecord_TableName(t *testing.T) {
	assert.Equal(t, "chat_documents", storage.DocumentRecord{}.TableName())
}

func TestPostgresStorage_Load(t *testing.T) {
	// Arrange
	s, mock := newMockPostgres(t)
	doc, err := json.Marshal(sampleSnapshot())
	require.NoError(t, err)
	mock.ExpectQuery(selectDocument).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document"}).AddRow(1, string(doc)))

	// Act
	loaded, err := s.Load(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot().Rooms, loaded.Rooms)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "hello", loaded.Messages[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_LoadMissingRowIsNotExist(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectQuery(selectDocument).WillReturnRows(sqlmock.NewRows([]string{"id", "document"}))

	_, err := s.Load(context.Background())

	assert.ErrorIs(t, err, storage.ErrNotExist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_LoadFailures(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{"corrupt document", func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(selectDocument).
				WillReturnRows(sqlmock.NewRows([]string{"id", "document"}).AddRow(1, "{not json"))
		}},
		{"query error", func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(selectDocument).WillReturnError(errors.New("connection refused"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockPostgres(t)
			tt.expect(mock)

			_, err := s.Load(context.Background())

			assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStorage_SaveUpsertsInTransaction(t *testing.T) {
	// Arrange
	s, mock := newMockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectQuery(upsertDocument).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Act
	err := s.Save(context.Background(), sampleSnapshot())

	// Assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_SaveFailureRollsBack(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectQuery(upsertDocument).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), sampleSnapshot())

	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
