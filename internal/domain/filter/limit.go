package filter

import "iter"

// Limit yields at most n leading elements of seq. When n <= 0 seq is
// returned unchanged. The upstream is not pulled past the n-th element.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		remaining := n
		for v := range seq {
			if !yield(v) {
				return
			}
			remaining--
			if remaining == 0 {
				return
			}
		}
	}
}
