//go:build !unix

package allocator

func mapAnonymous(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmapAnonymous([]byte) error {
	return nil
}
