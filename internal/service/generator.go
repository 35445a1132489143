package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"curiousminds/internal/models"
)

// Bank generation is idempotent: every generated question carries a slot id
// derived from (level, set, question number, sub-part), so re-running a
// generation overwrites the previous bank slot-for-slot instead of appending.

const (
	// multipliers are drawn from [2,9], three distinct per base number
	multiplierMin  = 2
	multiplierSpan = 8

	// VocabularySets is the fixed number of dictation sets per stage
	VocabularySets = 50
	// VocabularyBlocks is the number of item slots per dictation set
	VocabularyBlocks = 40
	// WordsPerBlock is the sampling-pool size for one item slot
	WordsPerBlock = 5
)

// ErrNoBaseNumbers rejects numeric generation without a usable base list
var ErrNoBaseNumbers = errors.New("base numbers required")

// ErrEmptyRegistry rejects vocabulary generation for a stage with no registry words
var ErrEmptyRegistry = errors.New("no master registry data")

// ParseBaseNumbers parses a comma-separated base-number list. An empty or
// unparseable list is a validation error; generation must fail before any
// write happens.
func ParseBaseNumbers(input string) ([]int, error) {
	var numbers []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid base number %q: %w", part, ErrNoBaseNumbers)
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return nil, ErrNoBaseNumbers
	}
	return numbers, nil
}

// distinctMultipliers draws three distinct multipliers from [2,9]
func distinctMultipliers(rng *rand.Rand) (int, int, int) {
	var picked []int
	for len(picked) < 3 {
		m := rng.Intn(multiplierSpan) + multiplierMin
		duplicate := false
		for _, p := range picked {
			if p == m {
				duplicate = true
				break
			}
		}
		if !duplicate {
			picked = append(picked, m)
		}
	}
	return picked[0], picked[1], picked[2]
}

// BuildMathBank generates numSets numeric-drill sets for a level. Each base
// number yields three framings of the same fact family: repeated addition,
// running sum, and direct multiplication. Simple tiers lay the three out at
// sequential question numbers; advanced tiers emit them as a/b/c parts of one
// question number, which scoring aggregates into a single pass/fail unit.
func BuildMathBank(level string, baseNumbers []int, numSets int, advanced bool, rng *rand.Rand) ([]models.Question, error) {
	if len(baseNumbers) == 0 {
		return nil, ErrNoBaseNumbers
	}
	if numSets <= 0 {
		return nil, fmt.Errorf("set count must be positive, got %d", numSets)
	}

	level = strings.ToLower(level)
	var questions []models.Question

	for t := 1; t <= numSets; t++ {
		testID := strconv.Itoa(t)
		for idx, num := range baseNumbers {
			vA, vB, vC := distinctMultipliers(rng)
			texts := []string{
				fmt.Sprintf("%d added %d times", num, vA),
				fmt.Sprintf("%d + %d + ... (%d times)", num, num, vB),
				fmt.Sprintf("%d X %d", num, vC),
			}
			answers := []int{num * vA, num * vB, num * vC}

			if advanced {
				qNum := idx + 1
				subs := []string{"a", "b", "c"}
				for i, sub := range subs {
					questions = append(questions, models.Question{
						ID:          models.QuestionID(level, testID, qNum, sub),
						Level:       level,
						TestID:      testID,
						QuestionNum: qNum,
						SubQuestion: sub,
						Text:        texts[i],
						Answer:      strconv.Itoa(answers[i]),
					})
				}
			} else {
				seqStart := idx*3 + 1
				for i := 0; i < 3; i++ {
					questions = append(questions, models.Question{
						ID:          models.QuestionID(level, testID, seqStart+i, "main"),
						Level:       level,
						TestID:      testID,
						QuestionNum: seqStart + i,
						SubQuestion: "",
						Text:        texts[i],
						Answer:      strconv.Itoa(answers[i]),
					})
				}
			}
		}
	}

	return questions, nil
}

// BuildVocabularySets generates the fixed 50 sets x 40 slots for a stage.
// The stage's registry words are partitioned by id order into 40 blocks of 5;
// each set draws one random word per block, so a given slot always samples
// from the same block across every set and every regeneration.
func BuildVocabularySets(stage string, words []models.MasterWord, rng *rand.Rand) ([]models.Question, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrEmptyRegistry, stage)
	}

	stage = strings.ToLower(stage)
	sorted := make([]models.MasterWord, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var questions []models.Question
	for set := 1; set <= VocabularySets; set++ {
		testID := strconv.Itoa(set)
		for block := 0; block < VocabularyBlocks; block++ {
			start := block * WordsPerBlock
			if start >= len(sorted) {
				break
			}
			end := start + WordsPerBlock
			if end > len(sorted) {
				end = len(sorted)
			}
			pool := sorted[start:end]
			word := pool[rng.Intn(len(pool))]

			prompt := word.EnglishGloss
			if prompt == "" {
				prompt = "No Prompt"
			}
			if word.SecondaryGloss != "" {
				prompt = prompt + " - " + word.SecondaryGloss
			}

			questions = append(questions, models.Question{
				ID:          fmt.Sprintf("vocab-%s-t%s-q%d", stage, testID, block+1),
				Level:       stage,
				TestID:      testID,
				QuestionNum: block + 1,
				SubQuestion: "",
				Text:        prompt,
				Answer:      word.NativeText,
				Definition:  word.EnglishGloss,
				Context:     word.SecondaryGloss,
			})
		}
	}

	return questions, nil
}
