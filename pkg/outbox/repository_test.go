package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

// postgresMock opens gorm on the postgres dialect over sqlmock so the
// Postgres-only row locking can be asserted; sqlite drops FOR UPDATE.
func postgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return conn, mock
}

func TestFetchUnpublishedSkipsLockedRows(t *testing.T) {
	conn, mock := postgresMock(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "outbox_events" WHERE published_at IS NULL AND attempt_count < .+ ORDER BY created_at ASC,id ASC LIMIT .+ FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "aggregate_type", "aggregate_id", "payload", "created_at", "attempt_count"}).
			AddRow(id.String(), string(enums.EventOrderCreated), string(enums.AggregateOrder), 12, []byte(`{"version":1}`), time.Now(), 0))

	rows, err := NewRepository(conn).FetchUnpublishedForPublish(conn, 25, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.EqualValues(t, 12, rows[0].AggregateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublishedBeforeOnlyTouchesDeliveredRows(t *testing.T) {
	conn, mock := postgresMock(t)
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	mock.ExpectExec(`DELETE FROM "outbox_events" WHERE published_at IS NOT NULL AND published_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := NewRepository(conn).DeletePublishedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
