package util

// Set is a generic set backed by a map
type Set[T comparable] map[T]struct{}

// SetOf returns a Set containing the given values
func SetOf[T comparable](values ...T) Set[T] {
	res := make(Set[T], len(values))
	for _, v := range values {
		res.Add(v)
	}
	return res
}

// Add inserts v into the set
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Remove deletes v from the set
func (s Set[T]) Remove(v T) {
	delete(s, v)
}

// Contains reports whether v is in the set
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values in the set
func (s Set[T]) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no values
func (s Set[T]) IsEmpty() bool {
	return len(s) == 0
}

// Values returns the set's values in no particular order
func (s Set[T]) Values() []T {
	res := make([]T, 0, len(s))
	for v := range s {
		res = append(res, v)
	}
	return res
}
