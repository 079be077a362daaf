// Package persistence owns every on-disk and OS-store representation of the
// machine identifier and the license record.
//
// The identifier is replicated to several locations in a fixed priority order:
// the OS-native per-user store where the platform has one, the primary state
// directory, then legacy directories kept for older installations. Reads take
// the first well-formed copy; writes are best effort so a single surviving copy
// is enough for the next launch. Repair propagates a value to the locations
// that are missing it or disagree with it.
package persistence
