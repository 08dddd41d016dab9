package ports

import "context"

// KeyValueStore — синхронное локальное хранилище документов по ключу.
type KeyValueStore interface {
	// Get — (value, true, nil) при наличии, (nil, false, nil) при отсутствии ключа.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
