package services

import "github.com/quizdesk/quiz-service/internal/models"

// AnswerKey is the frozen grading input for a single question: the correct
// answer and the points awarded for it.
type AnswerKey struct {
	CorrectAnswer string
	Points        float64
}

// BuildAnswerKey converts a quiz's question links into a grading map keyed by
// question ID. Questions whose options fail to decode are excluded, matching
// the set of questions the taker was actually shown.
func BuildAnswerKey(links []models.QuizQuestion) map[string]AnswerKey {
	key := make(map[string]AnswerKey, len(links))
	for _, link := range links {
		if link.Question.ID == "" {
			continue
		}
		if _, err := link.Question.DecodeOptions(); err != nil {
			continue
		}
		key[link.QuestionID] = AnswerKey{
			CorrectAnswer: link.Question.CorrectAnswer,
			Points:        link.Points,
		}
	}
	return key
}

// ComputeScore grades a set of answers against an answer key.
//
// A correct answer adds the question's points. A wrong non-blank answer
// subtracts negativePoints when negative marking is on, otherwise counts
// zero. Blank answers are always neutral, even under negative marking.
// Answers for questions not in the key are ignored.
//
// The returned score is signed; aggressive negative marking can drive it
// below zero. Clamping is a display concern, see DisplayPercentage.
func ComputeScore(key map[string]AnswerKey, answers map[string]string, negativeMarking bool, negativePoints float64) float64 {
	var score float64
	for questionID, entry := range key {
		given, ok := answers[questionID]
		if !ok || given == "" {
			continue
		}
		if given == entry.CorrectAnswer {
			score += entry.Points
		} else if negativeMarking {
			score -= negativePoints
		}
	}
	return score
}

// DisplayPercentage converts a signed score into the 0-100 value shown to
// users. Negative scores display as 0%.
func DisplayPercentage(score, totalPoints float64) float64 {
	if totalPoints <= 0 {
		return 0
	}
	pct := score / totalPoints * 100
	if pct < 0 {
		return 0
	}
	return pct
}
