package sliceutil

// Contains returns whether the slice contains the element
func Contains[T comparable](slice []T, elem T) bool {
	for _, e := range slice {
		if e == elem {
			return true
		}
	}
	return false
}

// RemoveDuplicates returns a new slice with the elements of the given
// slice in the same order but without duplicates
func RemoveDuplicates[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	var res []T
	for _, e := range slice {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		res = append(res, e)
	}
	return res
}
