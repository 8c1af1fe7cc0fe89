package report

import "cmp"

// Bounded tracks the key holding a bound value and how many keys share it.
type Bounded[T cmp.Ordered] struct {
	Key   string
	Value T
	Count int
}

// IsUnset reports whether no key has been registered yet.
func (b *Bounded[T]) IsUnset() bool {
	return b.Count == 0
}

func (b *Bounded[T]) update(key string, v T) {
	b.Key = key
	b.Value = v
	b.Count = 1
}

func (b *Bounded[T]) apply(key string, v T, better func(a, b T) bool) {
	switch {
	case b.IsUnset():
		b.update(key, v)
	case v == b.Value:
		b.Count++
	case better(v, b.Value):
		b.update(key, v)
	}
}

// Apply registers key with value v against a lower and an upper bound.
// The first key seen for a bound value keeps the name.
func Apply[T cmp.Ordered](lower, upper *Bounded[T], key string, v T) {
	lower.apply(key, v, cmp.Less[T])
	upper.apply(key, v, func(a, b T) bool { return cmp.Less(b, a) })
}
