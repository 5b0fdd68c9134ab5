package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"exam-room-service/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.QuestionBank{
			"bank-1": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
}

func TestBankRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string]domain.QuestionBank{"bank-1": sampleBank()}),
	}
	repo := NewBankRepository(loader, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("get bank after expiry: %v", err)
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls.Load())
	}
}

func TestBankRepositoryRejectsInvalidBank(t *testing.T) {
	bank := sampleBank()
	bank.Questions[0].Correct = "Z"
	repo := NewBankRepository(NewStaticBankLoader(map[string]domain.QuestionBank{"bank-1": bank}), time.Minute)

	_, err := repo.GetBank(context.Background(), "bank-1")
	if !errors.Is(err, domain.ErrInvalidBank) {
		t.Fatalf("expected invalid bank error, got %v", err)
	}
}

func TestStaticBankLoaderUnknownBank(t *testing.T) {
	loader := NewStaticBankLoader(nil)
	if _, err := loader.LoadBank(context.Background(), "missing"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	l.calls.Add(1)
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID: "bank-1",
		Questions: []domain.Question{
			{
				ID:      1,
				Type:    "TPS",
				Text:    "What is 2 + 2?",
				Options: map[string]string{"A": "3", "B": "4"},
				Correct: "B",
			},
		},
	}
}

func TestDefaultBanksAreValid(t *testing.T) {
	banks := DefaultBanks()
	bank, ok := banks["utbk"]
	if !ok {
		t.Fatalf("expected utbk bank")
	}
	if err := bank.Validate(); err != nil {
		t.Fatalf("default bank invalid: %v", err)
	}
	if len(bank.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(bank.Questions))
	}
}
