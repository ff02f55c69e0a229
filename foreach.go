package workpool

import "context"

// ForEach applies fn to each input on p and waits for all of them.
// It is Map without results: the returned error is errors.Join of one
// *InputError per failed input, or nil when all succeed.
func ForEach[I any](ctx context.Context, p *Pool, fn func(context.Context, I) error, inputs []I) error {
	if len(inputs) == 0 {
		return nil
	}
	_, err := Map(ctx, p, func(ctx context.Context, in I) (struct{}, error) {
		return struct{}{}, fn(ctx, in)
	}, inputs)
	return err
}
