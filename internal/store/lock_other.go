//go:build !unix

package store

// lockFile is a no-op where flock is unavailable; the in-process mutex still applies.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
