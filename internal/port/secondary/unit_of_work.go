package secondary

import "context"

// UnitOfWork executes fn within a single database transaction: one
// business transaction maps to one database transaction. Repository
// calls made with the context fn receives participate in that
// transaction; if fn returns an error the transaction is rolled back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
