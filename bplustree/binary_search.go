package bplus

// lowerBound returns the first index whose key is >= target.
func lowerBound[V any](keys []V, target V, cmp func(a, b V) int) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keys[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the first index whose key is > target, so equal keys
// keep their insertion order.
func upperBound[V any](keys []V, target V, cmp func(a, b V) int) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keys[mid], target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// insertAt inserts elem at index i in slice.
func insertAt[T any](slice []T, i int, elem T) []T {
	slice = append(slice, elem) // grow by 1
	copy(slice[i+1:], slice[i:])
	slice[i] = elem
	return slice
}
