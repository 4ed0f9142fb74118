package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionProgress(t *testing.T) {
	r := Region{RequiredUsersToUnlock: 50, FrenchUserCount: 10, EnglishUserCount: 15}
	assert.Equal(t, 25, r.TotalUsers())
	assert.InDelta(t, 50.0, r.Progress(), 0.001)
}

func TestRegionProgressCapsAtHundred(t *testing.T) {
	r := Region{RequiredUsersToUnlock: 10, FrenchUserCount: 20, EnglishUserCount: 30}
	assert.Equal(t, 100.0, r.Progress())
}

func TestRegionProgressZeroRequirement(t *testing.T) {
	assert.Equal(t, 100.0, Region{}.Progress())
	assert.Equal(t, 100.0, Region{RequiredUsersToUnlock: -1}.Progress())
}

func TestDefaultQuizAnswers(t *testing.T) {
	a := DefaultQuizAnswers()
	assert.Equal(t, "beginner", a.ProficiencyLevel)
	assert.Equal(t, "moderate", a.SpeakingConfidence)
	assert.Equal(t, "visual", a.LearningStyle)
	assert.Equal(t, "weekly", a.PracticeFrequency)
	assert.Equal(t, "fredericton", a.PreferredLocation)
	assert.Equal(t, "weekend", a.AvailableTime)
}
