package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/service"
)

// encodeCollection renders a collection as a JSON array; nil becomes [].
func encodeCollection[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeCollection[T any](value string) ([]T, error) {
	var items []T
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// loadCollection reads key from store. A missing key returns nil, nil.
func loadCollection[T any](ctx context.Context, store service.Storage, key string) ([]T, error) {
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}

	items, err := decodeCollection[T](value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptData, key, err)
	}
	return items, nil
}
