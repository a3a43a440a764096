package rule

import "context"

// Repository provides persistence for rules in evaluation order.
type Repository interface {
	List(ctx context.Context) ([]Rule, error)
	Get(ctx context.Context, id string) (*Rule, error)
	Create(ctx context.Context, r *Rule) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, rules []Rule) error
}
