package dbmetrics

import "context"

type ctxKey int

const txCtxKey ctxKey = iota

// WithTx кладет активную транзакцию в контекст
// Репозитории достают её через GetExecutor
func WithTx(ctx context.Context, tx DBExecutor) context.Context {
	return context.WithValue(ctx, txCtxKey, tx)
}

// GetExecutor возвращает транзакцию из контекста, если она там есть,
// иначе переданный executor по умолчанию
func GetExecutor(ctx context.Context, def DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(txCtxKey).(DBExecutor); ok {
		return tx
	}
	return def
}

// IsInTransaction возвращает true, если в контексте есть активная транзакция
// Используется репозиториями для добавления FOR UPDATE к блокирующим выборкам
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txCtxKey).(DBExecutor)
	return ok
}
