package imagequeue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const listKey = "image-jobs"

// Queue is a Redis-backed work queue of object storage keys awaiting
// optimization. Producers enqueue after uploading the original; the
// image worker consumes.
type Queue struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Enqueue adds an object key to the queue.
func (q *Queue) Enqueue(ctx context.Context, objectKey string) error {
	return q.rdb.LPush(ctx, listKey, objectKey).Err()
}

// Dequeue blocks up to timeout for the next key. Returns ok=false when
// the timeout elapses with an empty queue.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, bool, error) {
	res, err := q.rdb.BRPop(ctx, timeout, listKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	// BRPOP returns [key, value].
	if len(res) < 2 {
		return "", false, nil
	}
	return res[1], true, nil
}
