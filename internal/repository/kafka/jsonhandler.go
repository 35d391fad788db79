package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONHandler decodes the message value into M before handing it on. A value
// that does not decode is an error for the caller to log; the message is not
// redelivered.
func JSONHandler[M any](handle func(context.Context, []byte, *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var msg M
		if err := json.Unmarshal(value, &msg); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		return handle(ctx, key, &msg)
	}
}
