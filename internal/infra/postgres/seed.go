package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam-room-service/internal/domain"
	"github.com/uptrace/bun"
)

type questionBankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	ID        string          `bun:"id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at"`
}

// SeedBanks upserts the given banks into question_banks.
func SeedBanks(ctx context.Context, db *bun.DB, banks []domain.QuestionBank) error {
	for _, bank := range banks {
		if err := bank.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(bank)
		if err != nil {
			return fmt.Errorf("marshal bank %q: %w", bank.ID, err)
		}
		row := &questionBankRow{ID: bank.ID, Data: data, UpdatedAt: time.Now()}
		_, err = db.NewInsert().
			Model(row).
			On("CONFLICT (id) DO UPDATE").
			Set("data = EXCLUDED.data").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("seed bank %q: %w", bank.ID, err)
		}
	}
	return nil
}
