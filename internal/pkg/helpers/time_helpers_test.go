package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
}

func TestClampAfter(t *testing.T) {
	prev := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, prev, ClampAfter(prev.Add(-time.Minute), &prev))
	assert.Equal(t, prev.Add(time.Minute), ClampAfter(prev.Add(time.Minute), &prev))
	assert.Equal(t, prev.Add(-time.Minute), ClampAfter(prev.Add(-time.Minute), nil))
}
