package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestSequentialRecordNumbers(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `patients` WHERE record_number LIKE ?")).
		WithArgs("RM-2025-%").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(41))

	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	num, err := SequentialRecordNumbers{}.Next(db, now)
	require.NoError(t, err)
	assert.Equal(t, "RM-2025-0042", num)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequentialRecordNumbersFirstOfYear(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `patients` WHERE record_number LIKE ?")).
		WithArgs("RM-2026-%").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	now := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	num, err := SequentialRecordNumbers{}.Next(db, now)
	require.NoError(t, err)
	assert.Equal(t, "RM-2026-0001", num)
}

func TestFallbackRecordNumber(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "RM-1756720800000", FallbackRecordNumber(now))
	assert.Regexp(t, `^RM-\d+$`, FallbackRecordNumber(time.Now()))
}
