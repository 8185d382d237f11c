package store

import "context"

// updater is implemented by slices that can modify one item by id under their lock
type updater[T any] interface {
	Update(id string, fn func(*T)) bool
}

// lens reads and writes the part S of T that a mutation changes
type lens[T, S any] struct {
	get func(*T) S
	set func(*T, S)
}

// mutate applies next optimistically to item id, runs call, and on failure
// restores whatever the ledger decides. Items that are not loaded locally
// are left alone and only the call runs.
func mutate[T, S any](ctx context.Context, u updater[T], ledger *Ledger[S], l lens[T, S], key, id string, next func(S) S, call func(context.Context) error) error {
	var m Mutation
	found := u.Update(id, func(item *T) {
		cur := l.get(item)
		m = ledger.Begin(key, cur)
		l.set(item, next(cur))
	})
	if !found {
		return call(ctx)
	}

	err := call(ctx)
	if err == nil {
		ledger.Succeed(m)
		return nil
	}

	settledLocally := u.Update(id, func(item *T) {
		if snap, ok := ledger.Fail(m); ok {
			l.set(item, snap)
		}
	})
	if !settledLocally {
		// Item went away meanwhile (delete event, reload)
		ledger.Fail(m)
	}
	return err
}
