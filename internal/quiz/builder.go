package quiz

import (
	"math/rand"

	"kidlingo-service/internal/domain"
)

const (
	DefaultQuestionLimit    = 5
	DefaultPointsPerCorrect = 10
	DefaultMaxOptions       = 4
)

// Settings tunes question-set size and scoring. Zero fields fall back to the defaults.
type Settings struct {
	QuestionLimit    int
	PointsPerCorrect int
	MaxOptions       int
}

func (s Settings) withDefaults() Settings {
	if s.QuestionLimit <= 0 {
		s.QuestionLimit = DefaultQuestionLimit
	}
	if s.PointsPerCorrect <= 0 {
		s.PointsPerCorrect = DefaultPointsPerCorrect
	}
	if s.MaxOptions < 2 {
		s.MaxOptions = DefaultMaxOptions
	}
	return s
}

// BuildQuestions turns the words of one category into a fixed question sequence.
// The first min(QuestionLimit, len(words)) words are asked in source order; each
// question offers the correct translation plus up to MaxOptions-1 distinct decoys.
func BuildQuestions(words []domain.Word, settings Settings, rnd *rand.Rand) ([]domain.Question, error) {
	if len(words) == 0 {
		return nil, domain.ErrNoWords
	}
	settings = settings.withDefaults()

	count := len(words)
	if count > settings.QuestionLimit {
		count = settings.QuestionLimit
	}

	questions := make([]domain.Question, 0, count)
	for _, word := range words[:count] {
		decoys := pickDecoys(words, word.Translation, settings.MaxOptions-1, rnd)

		options := make([]string, 0, len(decoys)+1)
		options = append(options, word.Translation)
		options = append(options, decoys...)
		rnd.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, domain.Question{
			Prompt:        word.Text,
			CorrectAnswer: word.Translation,
			Options:       options,
		})
	}
	return questions, nil
}

// pickDecoys draws up to limit distinct translations other than correct, without replacement.
func pickDecoys(words []domain.Word, correct string, limit int, rnd *rand.Rand) []string {
	seen := map[string]struct{}{correct: {}}
	pool := make([]string, 0, len(words))
	for _, w := range words {
		if _, dup := seen[w.Translation]; dup {
			continue
		}
		seen[w.Translation] = struct{}{}
		pool = append(pool, w.Translation)
	}

	rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
