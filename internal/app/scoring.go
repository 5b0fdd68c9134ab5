package app

import "exam-room-service/internal/domain"

// PointsPerQuestion is awarded for every correctly answered question.
const PointsPerQuestion = 100

// Score compares a ledger against the questions in order. Keys are compared
// exactly; missing or wrong answers contribute nothing.
func Score(questions []domain.Question, ledger map[int]string) domain.ExamResult {
	result := domain.ExamResult{Total: len(questions)}
	for _, q := range questions {
		if answer, ok := ledger[q.ID]; ok && answer == q.Correct {
			result.CorrectCount++
			result.Score += PointsPerQuestion
		}
	}
	return result
}
