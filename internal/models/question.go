package models

import "fmt"

// Question is one testable prompt/answer unit inside a generated set. Its id
// is derived from (level, set, question number, sub-part), so regenerating a
// bank produces the same keys and a re-put overwrites instead of duplicating.
type Question struct {
	ID          string `json:"id"`
	Level       string `json:"level"`
	TestID      string `json:"testId"`
	QuestionNum int    `json:"questionNum"`
	SubQuestion string `json:"subQuestion"` // '', 'a', 'b', 'c'
	Text        string `json:"text"`
	Answer      string `json:"answer"`
	Definition  string `json:"definition,omitempty"`
	Context     string `json:"context,omitempty"`
}

// QuestionID builds the deterministic slot key for a question. sub is "main"
// for standalone questions or the sub-part letter for grouped ones.
func QuestionID(level, testID string, questionNum int, sub string) string {
	return fmt.Sprintf("%s-t%s-q%d-%s", level, testID, questionNum, sub)
}

// MasterWord is one raw vocabulary entry in the master registry. Its 3-digit
// ordinal suffix fixes the word's position within a stage, which keeps block
// membership stable across set regenerations.
type MasterWord struct {
	ID             string `json:"id"` // stage + 3-digit ordinal
	Stage          string `json:"stage"`
	NativeText     string `json:"nativeText"`
	EnglishGloss   string `json:"englishGloss"`
	SecondaryGloss string `json:"secondaryGloss"`
}

// MasterWordID builds the registry id for the word at 1-based position ordinal
// within a stage.
func MasterWordID(stage string, ordinal int) string {
	return fmt.Sprintf("%s-%03d", stage, ordinal)
}
