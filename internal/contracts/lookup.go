package contracts

// Lookup 보강 데이터 조회 결과
// 실패는 error 가 아니라 값으로 전달됨: Available(data) 또는 Unavailable(cause)
type Lookup[T any] struct {
	data  T
	cause error
	ok    bool
}

// Available wraps a successful lookup
func Available[T any](data T) Lookup[T] {
	return Lookup[T]{data: data, ok: true}
}

// Unavailable marks a lookup whose backend could not answer; callers use defaults
func Unavailable[T any](cause error) Lookup[T] {
	if cause == nil {
		cause = ErrEnrichmentUnavailable
	}
	return Lookup[T]{cause: cause}
}

// OK reports whether data is usable
func (l Lookup[T]) OK() bool {
	return l.ok
}

// Data returns the payload (zero value when unavailable)
func (l Lookup[T]) Data() T {
	return l.data
}

// Cause returns why the lookup was unavailable (nil when OK)
func (l Lookup[T]) Cause() error {
	return l.cause
}
