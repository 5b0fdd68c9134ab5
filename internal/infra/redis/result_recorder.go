package redis

import (
	"context"
	"fmt"
	"time"

	"exam-room-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultRecorder keeps the latest result of every finished player per room:
//
//	ZADD exam:room:{roomID}:results {score} {playerID}
//	HSET exam:room:{roomID}:names   {playerID} {name}
type ResultRecorder struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultRecorder(client *redis.Client, ttl time.Duration) *ResultRecorder {
	return &ResultRecorder{client: client, ttl: ttl}
}

func (r *ResultRecorder) RecordResult(ctx context.Context, roomID string, player domain.PlayerView, result domain.ExamResult) error {
	resultsKey, namesKey := r.resultsKey(roomID), r.namesKey(roomID)

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, resultsKey, redis.Z{Score: float64(result.Score), Member: player.ID})
	pipe.HSet(ctx, namesKey, player.ID, player.Name)
	if r.ttl > 0 {
		pipe.Expire(ctx, resultsKey, r.ttl)
		pipe.Expire(ctx, namesKey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (r *ResultRecorder) resultsKey(roomID string) string {
	return fmt.Sprintf("exam:room:%s:results", roomID)
}

func (r *ResultRecorder) namesKey(roomID string) string {
	return fmt.Sprintf("exam:room:%s:names", roomID)
}
