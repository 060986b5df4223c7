// internal/crs/clb/clb_test.go
package clb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crs-workers/internal/models"
)

func TestResolveIELTS(t *testing.T) {
	tests := []struct {
		name  string
		skill models.LanguageSkill
		score float64
		want  int
	}{
		{"listening top band", models.SkillListening, 8.5, 10},
		{"listening exact threshold", models.SkillListening, 6.0, 7},
		{"listening half band between thresholds", models.SkillListening, 7.5, 9},
		{"speaking perfect", models.SkillSpeaking, 9.0, 10},
		{"reading mid band", models.SkillReading, 5.0, 6},
		{"writing minimum benchmark", models.SkillWriting, 4.0, 4},
		{"writing below benchmark", models.SkillWriting, 3.5, BelowBenchmark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(models.TestIELTS, tt.skill, tt.score)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		test  models.LanguageTest
		skill models.LanguageSkill
		score float64
	}{
		{"ielts reading above scale", models.TestIELTS, models.SkillReading, 150},
		{"ielts listening negative", models.TestIELTS, models.SkillListening, -1},
		{"celpip above level 12", models.TestCELPIP, models.SkillSpeaking, 13},
		{"pte above 90", models.TestPTE, models.SkillWriting, 95},
		{"tef listening above scale", models.TestTEF, models.SkillListening, 400},
		{"unknown test", models.LanguageTest("TOEFL"), models.SkillReading, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.test, tt.skill, tt.score)
			require.Error(t, err)

			var invalid *InvalidScoreError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.test, invalid.Test)
			assert.Equal(t, tt.skill, invalid.Skill)
			assert.Equal(t, tt.score, invalid.Score)
		})
	}
}

func TestResolveCELPIP(t *testing.T) {
	// Listening and speaking sit one level above reading and writing
	// for the same raw score.
	got, err := Resolve(models.TestCELPIP, models.SkillListening, 9)
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	got, err = Resolve(models.TestCELPIP, models.SkillReading, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}

func TestResolveFrenchTests(t *testing.T) {
	got, err := Resolve(models.TestTEF, models.SkillReading, 250)
	require.NoError(t, err)
	assert.Equal(t, 9, got)

	// TCF uses one scale for all four skills.
	for _, skill := range models.AllSkills {
		got, err := Resolve(models.TestTCF, skill, 263)
		require.NoError(t, err)
		assert.Equal(t, 8, got, "skill %s", skill)
	}
}

func TestResolvePTE(t *testing.T) {
	got, err := Resolve(models.TestPTE, models.SkillListening, 60)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	// Scores under the lowest benchmark band are valid but below CLB 4.
	got, err = Resolve(models.TestPTE, models.SkillListening, 15)
	require.NoError(t, err)
	assert.Equal(t, BelowBenchmark, got)
}

func TestResolveAll(t *testing.T) {
	levels, err := ResolveAll(models.LanguageTestResult{
		Test:      models.TestIELTS,
		Listening: 8.0,
		Speaking:  7.0,
		Reading:   7.0,
		Writing:   7.0,
	})
	require.NoError(t, err)
	assert.Equal(t, Levels{Listening: 10, Speaking: 9, Reading: 10, Writing: 9}, levels)
	assert.Equal(t, 9, levels.Lowest())
	assert.True(t, levels.AllAtLeast(9))
	assert.False(t, levels.AllAtLeast(10))
}

func TestResolveAllAbortsOnInvalidSkill(t *testing.T) {
	_, err := ResolveAll(models.LanguageTestResult{
		Test:      models.TestIELTS,
		Listening: 6.0,
		Speaking:  6.0,
		Reading:   150,
		Writing:   6.0,
	})

	var invalid *InvalidScoreError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, models.SkillReading, invalid.Skill)
}
