package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(999))
	assert.Equal(t, 2, LevelForXP(1000))
	assert.Equal(t, 3, LevelForXP(2500))
}

func TestProgressStatusValid(t *testing.T) {
	assert.True(t, StatusNotStarted.Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, ProgressStatus("done").Valid())
}
