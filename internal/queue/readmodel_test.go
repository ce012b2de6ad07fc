package queue

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
)

type stubWaiting struct {
	rows   []models.Registration
	counts map[int64]int
	err    error
}

func (s stubWaiting) ListWaiting(context.Context, int64) ([]models.Registration, error) {
	return s.rows, s.err
}

func (s stubWaiting) CountWaiting(context.Context, []int64) (map[int64]int, error) {
	return s.counts, s.err
}

func TestFrontLeft(t *testing.T) {
	assert.Equal(t, -1, FrontLeft(0))
	assert.Equal(t, 0, FrontLeft(1))
	assert.Equal(t, 4, FrontLeft(5))
}

func TestProjectionSplitsCurrentFromQueue(t *testing.T) {
	reader := NewReader(stubWaiting{rows: []models.Registration{
		{ID: 3, QueueNumber: 1},
		{ID: 7, QueueNumber: 2},
		{ID: 9, QueueNumber: 3},
	}}, nil)

	result := reader.Projection(context.Background(), 1)
	require.Equal(t, StatusOK, result.Status)
	require.NotNil(t, result.CurrentRegistration)
	assert.Equal(t, int64(3), result.CurrentRegistration.ID)
	require.Len(t, result.QueueRegistrations, 2)
	assert.Equal(t, int64(7), result.QueueRegistrations[0].ID)
	assert.Equal(t, int64(9), result.QueueRegistrations[1].ID)
	require.NotNil(t, result.FrontLeft)
	assert.Equal(t, 2, *result.FrontLeft)
}

func TestProjectionEmptyQueue(t *testing.T) {
	result := NewReader(stubWaiting{}, nil).Projection(context.Background(), 1)
	assert.Equal(t, StatusOK, result.Status)
	assert.Nil(t, result.CurrentRegistration)
	assert.Empty(t, result.QueueRegistrations)
	assert.Equal(t, -1, *result.FrontLeft)
}

func TestProjectionFailureIsTagged(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "queue-test", Output: io.Discard})
	result := NewReader(stubWaiting{err: errors.New("db timeout")}, logg).Projection(context.Background(), 1)

	assert.Equal(t, StatusUnavailable, result.Status)
	assert.Equal(t, "db timeout", result.Error)
	assert.Nil(t, result.FrontLeft)
}

func TestSummaries(t *testing.T) {
	reader := NewReader(stubWaiting{counts: map[int64]int{1: 3}}, nil)
	out := reader.Summaries(context.Background(), []int64{1, 2})
	assert.Equal(t, 2, *out[1].FrontLeft)
	assert.Equal(t, -1, *out[2].FrontLeft)

	failed := NewReader(stubWaiting{err: errors.New("down")}, nil).Summaries(context.Background(), []int64{1})
	assert.Equal(t, StatusUnavailable, failed[1].Status)
}
