package services

import "context"

// WithOptimisticUpdate applies a local mutation, runs the remote operation, and reverts
// the mutation only if the remote operation fails. revert must undo exactly what apply did,
// or nothing once fresher data has replaced it.
func WithOptimisticUpdate(ctx context.Context, apply, revert func(), remote func(ctx context.Context) error) error {
	apply()
	if err := remote(ctx); err != nil {
		revert()
		return err
	}
	return nil
}
