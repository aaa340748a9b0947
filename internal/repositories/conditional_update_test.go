package repositories

import (
	"testing"

	"mietlink_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB - gorm поверх sqlmock с диалектом postgres
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestVisitSlotRepository_DecrementSeatIsConditional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVisitSlotRepository()

	mock.ExpectExec(`UPDATE "visit_slots" SET "seats_left"=seats_left - 1 WHERE \(id = \$1 AND seats_left > 0\)`).
		WithArgs("slot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "visit_slots" SET "seats_left"=seats_left - 1 WHERE \(id = \$1 AND seats_left > 0\)`).
		WithArgs("slot-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.DecrementSeat(db, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// места кончились: строка не подходит под условие
	rows, err = repo.DecrementSeat(db, "slot-1")
	require.NoError(t, err)
	assert.Zero(t, rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_DecideGuardsExistingDecision(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository()

	mock.ExpectExec(`UPDATE "candidates" SET .*"landlord_decision"=\$1.*WHERE \(id = \$\d+ AND \(landlord_decision IS NULL OR landlord_decision = \$\d+\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.Decide(db, "cand-1", models.DecisionAccepted, models.CandidateStatusAccepted)
	require.NoError(t, err)
	assert.Zero(t, rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateStatusFromPendingOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository()

	mock.ExpectExec(`UPDATE "payments" SET "status"=\$1,"updated_at"=\$2 WHERE \(id = \$3 AND status = \$4\)`).
		WithArgs("completed", sqlmock.AnyArg(), "pay-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateStatus(db, "pay-1", models.PaymentStatusPending, models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
