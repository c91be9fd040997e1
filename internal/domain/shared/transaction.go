package shared

import "context"

// TransactionManager runs a function inside a single storage transaction.
// Repositories resolve the transaction from the context the function
// receives, so multi-aggregate writes commit or roll back together.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
