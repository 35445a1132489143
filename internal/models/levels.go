package models

import "fmt"

// MathLevelConfig describes one numeric-drill difficulty tier. Tiers with
// SubQuestions > 1 emit their generated items as a/b/c parts of one question
// number, which scoring later aggregates into a single pass/fail unit.
type MathLevelConfig struct {
	ID                string
	Name              string
	QuestionsCount    int
	SubQuestions      int
	PassRequirement   int // percentage
	UnlockRequirement string
}

// Advanced reports whether the tier uses sub-part layout
func (l MathLevelConfig) Advanced() bool {
	return l.SubQuestions > 1
}

// MathLevels lists the numeric-drill tiers in unlock order
var MathLevels = []MathLevelConfig{
	{ID: "novice", Name: "Novice", QuestionsCount: 15, SubQuestions: 1, PassRequirement: 93},
	{ID: "awareness", Name: "Awareness", QuestionsCount: 30, SubQuestions: 1, PassRequirement: 90, UnlockRequirement: "novice"},
	{ID: "beginner", Name: "Beginner", QuestionsCount: 45, SubQuestions: 1, PassRequirement: 91, UnlockRequirement: "awareness"},
	{ID: "competent", Name: "Competent", QuestionsCount: 20, SubQuestions: 3, PassRequirement: 90, UnlockRequirement: "beginner"},
	{ID: "development", Name: "Development", QuestionsCount: 30, SubQuestions: 3, PassRequirement: 90, UnlockRequirement: "competent"},
	{ID: "expert", Name: "Expert", QuestionsCount: 40, SubQuestions: 3, PassRequirement: 90, UnlockRequirement: "development"},
}

// StageCount is the number of vocabulary stages
const StageCount = 18

// StageID returns the grouping key for vocabulary stage n (1-based)
func StageID(n int) string {
	return fmt.Sprintf("stage-%d", n)
}

// StageIDs returns all vocabulary stage grouping keys in order
func StageIDs() []string {
	ids := make([]string, 0, StageCount)
	for i := 1; i <= StageCount; i++ {
		ids = append(ids, StageID(i))
	}
	return ids
}

// AllLevelIDs returns every grouping key the reconciler pulls: the math tiers
// followed by the vocabulary stages.
func AllLevelIDs() []string {
	ids := make([]string, 0, len(MathLevels)+StageCount)
	for _, l := range MathLevels {
		ids = append(ids, l.ID)
	}
	return append(ids, StageIDs()...)
}

// MathLevelByID looks up a math tier by its grouping key
func MathLevelByID(id string) (MathLevelConfig, bool) {
	for _, l := range MathLevels {
		if l.ID == id {
			return l, true
		}
	}
	return MathLevelConfig{}, false
}
