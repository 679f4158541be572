package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockAlertsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresAlertsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresAlertsRepository(db)
	return db, mock, repo
}

func TestFindOpenAlert_Success(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	roomID := uuid.New().String()
	alertID := uuid.New().String()
	eventID := uuid.New().String()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{
		"alert_id", "room_id", "event_id", "status", "closed_by_user_id", "created_at", "closed_at",
	}).AddRow(alertID, roomID, eventID, "OPEN", nil, createdAt, nil)

	mock.ExpectQuery(`SELECT`).
		WithArgs(roomID).
		WillReturnRows(rows)

	alert, err := repo.FindOpenAlert(context.Background(), roomID)

	require.NoError(t, err)
	assert.Equal(t, alertID, alert.AlertID)
	assert.Equal(t, domain.AlertStatusOpen, alert.Status)
	assert.False(t, alert.ClosedByUserID.Valid)
	assert.False(t, alert.ClosedAt.Valid)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOpenAlert_None(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	roomID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(roomID).
		WillReturnError(sql.ErrNoRows)

	alert, err := repo.FindOpenAlert(context.Background(), roomID)

	assert.Nil(t, alert)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOpenAlert_Success(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	roomID := uuid.New().String()
	alertID := uuid.New().String()
	eventID := uuid.New().String()
	userID := uuid.New().String()
	createdAt := time.Now().Add(-time.Minute)
	closedAt := time.Now()

	rows := sqlmock.NewRows([]string{
		"alert_id", "room_id", "event_id", "status", "closed_by_user_id", "created_at", "closed_at",
	}).AddRow(alertID, roomID, eventID, "CLOSED", userID, createdAt, closedAt)

	mock.ExpectQuery(`UPDATE alerts`).
		WithArgs(roomID, userID, closedAt).
		WillReturnRows(rows)

	alert, err := repo.CloseOpenAlert(context.Background(), roomID, userID, closedAt)

	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusClosed, alert.Status)
	assert.True(t, alert.ClosedByUserID.Valid)
	assert.Equal(t, userID, alert.ClosedByUserID.String)
	assert.True(t, alert.ClosedAt.Valid)
	assert.True(t, !alert.ClosedAt.Time.Before(alert.CreatedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOpenAlert_AlreadyClosed(t *testing.T) {
	db, mock, repo := setupMockAlertsDB(t)
	defer db.Close()

	roomID := uuid.New().String()
	userID := uuid.New().String()

	// 第二次关闭：没有 OPEN 行可更新
	mock.ExpectQuery(`UPDATE alerts`).
		WithArgs(roomID, userID, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	alert, err := repo.CloseOpenAlert(context.Background(), roomID, userID, time.Now())

	assert.Nil(t, alert)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
