package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv(envWorkerID, "cron-7")
	assert.Equal(t, "cron-7", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv(envWorkerID, "")
	assert.NotEmpty(t, GetID())
}
