package app

import (
	"testing"

	"exam-room-service/internal/domain"
)

func TestScore(t *testing.T) {
	questions := bankWithCorrect("C", "C", "D", "D", "C").Questions

	tests := []struct {
		name   string
		ledger map[int]string
		want   domain.ExamResult
	}{
		{
			name:   "mixed",
			ledger: map[int]string{1: "C", 2: "A", 3: "D", 4: "D", 5: "E"},
			want:   domain.ExamResult{Score: 300, CorrectCount: 3, Total: 5},
		},
		{
			name:   "empty ledger",
			ledger: map[int]string{},
			want:   domain.ExamResult{Total: 5},
		},
		{
			name:   "all correct",
			ledger: map[int]string{1: "C", 2: "C", 3: "D", 4: "D", 5: "C"},
			want:   domain.ExamResult{Score: 500, CorrectCount: 5, Total: 5},
		},
		{
			name:   "case sensitive",
			ledger: map[int]string{1: "c", 2: "c"},
			want:   domain.ExamResult{Total: 5},
		},
		{
			name:   "unknown question ids ignored",
			ledger: map[int]string{42: "C", 1: "C"},
			want:   domain.ExamResult{Score: 100, CorrectCount: 1, Total: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(questions, tt.ledger)
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			if again := Score(questions, tt.ledger); again != got {
				t.Fatalf("score is not deterministic: %+v vs %+v", got, again)
			}
		})
	}
}

func TestScoreNoQuestions(t *testing.T) {
	got := Score(nil, map[int]string{1: "A"})
	if got != (domain.ExamResult{}) {
		t.Fatalf("expected zero result, got %+v", got)
	}
}

func bankWithCorrect(keys ...string) domain.QuestionBank {
	bank := domain.QuestionBank{ID: "bank"}
	for i, key := range keys {
		bank.Questions = append(bank.Questions, domain.Question{
			ID:      i + 1,
			Text:    "question",
			Options: map[string]string{"A": "a", "B": "b", "C": "c", "D": "d", "E": "e"},
			Correct: key,
		})
	}
	return bank
}
