// Package fallback expresses ordered degradation policies as data: a chain
// of ranked tiers where the first success wins.
package fallback

import "context"

// Tier is one ranked attempt in a fallback chain.
type Tier[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// First runs the tiers in order and returns the first successful result
// together with the name of the tier that produced it. When every tier
// fails, the zero value, the last tier's name and the last error are
// returned.
func First[T any](ctx context.Context, tiers ...Tier[T]) (T, string, error) {
	var (
		zero T
		name string
		err  error
	)
	for _, t := range tiers {
		var v T
		v, err = t.Run(ctx)
		name = t.Name
		if err == nil {
			return v, name, nil
		}
	}
	return zero, name, err
}
