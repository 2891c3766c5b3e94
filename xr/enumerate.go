package xr

// Enumerate runs the two-call idiom: fn(nil) reports the required count,
// then fn(dst) fills a buffer of that size. A count that grew between the
// calls is retried.
func Enumerate[T any](fn func(dst []T) (uint32, Result)) ([]T, Result) {
	for {
		n, res := fn(nil)
		if res.Failed() {
			return nil, res
		}
		if n == 0 {
			return nil, res
		}

		dst := make([]T, n)
		n, res = fn(dst)
		if res == ErrorSizeInsufficient {
			continue
		}
		if res.Failed() {
			return nil, res
		}
		return dst[:n], res
	}
}
