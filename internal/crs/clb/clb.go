// internal/crs/clb/clb.go
// Package clb converts raw language test scores into Canadian Language
// Benchmark levels. Each recognised test carries one conversion scale per
// skill; scales are fixed at compile time and never averaged across skills.
package clb

import (
	"fmt"

	"crs-workers/internal/models"
)

// BelowBenchmark is the level reported for valid scores that fall under
// every benchmark band of their scale. Factor tables group everything
// under level 4 into a single bucket, so the exact value below 4 never
// changes a lookup.
const BelowBenchmark = 3

// InvalidScoreError reports a raw score outside the reportable range of
// its test and skill. An out-of-range score is always an error, never a
// zero-point result.
type InvalidScoreError struct {
	Test  models.LanguageTest
	Skill models.LanguageSkill
	Score float64
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid %s %s score %v: outside reportable range", e.Test, e.Skill, e.Score)
}

// band maps every score at or above min (up to the next band) to a level.
type band struct {
	min   float64
	level int
}

// scale is the conversion table for one test and skill. Bands are ordered
// descending by min; resolution walks from the top band down and the first
// band containing the score wins.
type scale struct {
	max   float64
	bands []band
}

func (s scale) resolve(score float64) (int, bool) {
	if score < 0 || score > s.max {
		return 0, false
	}
	for _, b := range s.bands {
		if score >= b.min {
			return b.level, true
		}
	}
	return BelowBenchmark, true
}

var scales = map[models.LanguageTest]map[models.LanguageSkill]scale{
	models.TestIELTS: {
		models.SkillListening: {max: 9.0, bands: []band{
			{8.0, 10}, {7.0, 9}, {6.5, 8}, {6.0, 7}, {5.5, 6}, {5.0, 5}, {4.5, 4},
		}},
		models.SkillSpeaking: {max: 9.0, bands: []band{
			{7.5, 10}, {7.0, 9}, {6.5, 8}, {6.0, 7}, {5.5, 6}, {5.0, 5}, {4.0, 4},
		}},
		models.SkillReading: {max: 9.0, bands: []band{
			{7.0, 10}, {6.5, 9}, {6.0, 8}, {5.5, 7}, {4.5, 6}, {4.0, 5}, {3.5, 4},
		}},
		models.SkillWriting: {max: 9.0, bands: []band{
			{7.5, 10}, {7.0, 9}, {6.5, 8}, {6.0, 7}, {5.5, 6}, {5.0, 5}, {4.0, 4},
		}},
	},
	models.TestCELPIP: {
		models.SkillListening: {max: 12, bands: []band{
			{11, 10}, {10, 9}, {9, 8}, {8, 7}, {7, 6}, {6, 5}, {5, 4},
		}},
		models.SkillSpeaking: {max: 12, bands: []band{
			{11, 10}, {10, 9}, {9, 8}, {8, 7}, {7, 6}, {6, 5}, {5, 4},
		}},
		models.SkillReading: {max: 12, bands: []band{
			{10, 10}, {9, 9}, {8, 8}, {7, 7}, {6, 6}, {5, 5}, {4, 4},
		}},
		models.SkillWriting: {max: 12, bands: []band{
			{10, 10}, {9, 9}, {8, 8}, {7, 7}, {6, 6}, {5, 5}, {4, 4},
		}},
	},
	models.TestTEF: {
		models.SkillListening: {max: 360, bands: []band{
			{207, 10}, {193, 9}, {186, 8}, {176, 7}, {167, 6}, {159, 5}, {146, 4},
		}},
		models.SkillSpeaking: {max: 450, bands: []band{
			{298, 10}, {279, 9}, {263, 8}, {248, 7}, {232, 6}, {207, 5}, {181, 4},
		}},
		models.SkillReading: {max: 300, bands: []band{
			{263, 10}, {248, 9}, {232, 8}, {207, 7}, {174, 6}, {149, 5}, {121, 4},
		}},
		models.SkillWriting: {max: 450, bands: []band{
			{298, 10}, {279, 9}, {263, 8}, {248, 7}, {232, 6}, {207, 5}, {181, 4},
		}},
	},
	models.TestTCF: {
		models.SkillListening: {max: 699, bands: tcfBands()},
		models.SkillSpeaking:  {max: 699, bands: tcfBands()},
		models.SkillReading:   {max: 699, bands: tcfBands()},
		models.SkillWriting:   {max: 699, bands: tcfBands()},
	},
	models.TestPTE: {
		models.SkillListening: {max: 90, bands: []band{
			{89, 10}, {82, 9}, {71, 8}, {60, 7}, {50, 6}, {39, 5}, {28, 4},
		}},
		models.SkillSpeaking: {max: 90, bands: []band{
			{89, 10}, {84, 9}, {76, 8}, {68, 7}, {59, 6}, {51, 5}, {42, 4},
		}},
		models.SkillReading: {max: 90, bands: []band{
			{88, 10}, {78, 9}, {69, 8}, {60, 7}, {51, 6}, {42, 5}, {33, 4},
		}},
		models.SkillWriting: {max: 90, bands: []band{
			{90, 10}, {88, 9}, {79, 8}, {69, 7}, {60, 6}, {51, 5}, {41, 4},
		}},
	},
}

// TCF reports every skill on the same 0-699 scale.
func tcfBands() []band {
	return []band{{298, 10}, {279, 9}, {263, 8}, {248, 7}, {232, 6}, {207, 5}, {181, 4}}
}

// Resolve converts one raw score to its CLB (or NCLC for French tests)
// level. Unknown tests and out-of-range scores return InvalidScoreError.
func Resolve(test models.LanguageTest, skill models.LanguageSkill, score float64) (int, error) {
	byTest, ok := scales[test]
	if !ok {
		return 0, &InvalidScoreError{Test: test, Skill: skill, Score: score}
	}
	s, ok := byTest[skill]
	if !ok {
		return 0, &InvalidScoreError{Test: test, Skill: skill, Score: score}
	}
	level, ok := s.resolve(score)
	if !ok {
		return 0, &InvalidScoreError{Test: test, Skill: skill, Score: score}
	}
	return level, nil
}

// Levels holds the resolved benchmark level of each skill.
type Levels struct {
	Listening int `json:"listening"`
	Speaking  int `json:"speaking"`
	Reading   int `json:"reading"`
	Writing   int `json:"writing"`
}

// Level returns the benchmark level of one skill.
func (l Levels) Level(skill models.LanguageSkill) int {
	switch skill {
	case models.SkillListening:
		return l.Listening
	case models.SkillSpeaking:
		return l.Speaking
	case models.SkillReading:
		return l.Reading
	case models.SkillWriting:
		return l.Writing
	}
	return 0
}

// Lowest returns the minimum level across the four skills.
func (l Levels) Lowest() int {
	min := l.Listening
	for _, v := range []int{l.Speaking, l.Reading, l.Writing} {
		if v < min {
			min = v
		}
	}
	return min
}

// AllAtLeast reports whether every skill reaches the given level.
func (l Levels) AllAtLeast(level int) bool {
	return l.Lowest() >= level
}

// ResolveAll converts a full test result, one skill at a time. The first
// out-of-range skill aborts the conversion.
func ResolveAll(result models.LanguageTestResult) (Levels, error) {
	var levels Levels
	for _, skill := range models.AllSkills {
		level, err := Resolve(result.Test, skill, result.Score(skill))
		if err != nil {
			return Levels{}, err
		}
		switch skill {
		case models.SkillListening:
			levels.Listening = level
		case models.SkillSpeaking:
			levels.Speaking = level
		case models.SkillReading:
			levels.Reading = level
		case models.SkillWriting:
			levels.Writing = level
		}
	}
	return levels, nil
}
