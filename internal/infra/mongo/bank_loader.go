package mongo

import (
	"context"
	"errors"
	"fmt"

	"exam-room-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BankLoader reads question banks stored one document per bank, keyed by _id.
type BankLoader struct {
	collection *mongo.Collection
}

func NewBankLoader(client *mongo.Client, database, collection string) *BankLoader {
	return &BankLoader{collection: client.Database(database).Collection(collection)}
}

func (l *BankLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	var bank domain.QuestionBank
	err := l.collection.FindOne(ctx, bson.M{"_id": bankID}).Decode(&bank)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.QuestionBank{}, fmt.Errorf("load bank %q: %w", bankID, domain.ErrBankNotFound)
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load bank: %w", err)
	}
	return bank, nil
}

// SaveBank replaces the stored document for bank.ID, inserting it when absent.
func (l *BankLoader) SaveBank(ctx context.Context, bank domain.QuestionBank) error {
	if err := bank.Validate(); err != nil {
		return err
	}
	_, err := l.collection.ReplaceOne(ctx, bson.M{"_id": bank.ID}, bank, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}
