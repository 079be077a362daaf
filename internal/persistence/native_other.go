//go:build !windows

package persistence

// NativeLocation returns nil: only Windows has a per-user store for the
// identifier.
func NativeLocation(string) Location {
	return nil
}
