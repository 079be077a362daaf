// Package machineid defines the public machine identifier format and the
// normalization rules every other package routes untrusted strings through.
//
// A machine identifier is the literal prefix "NAVER-" followed by exactly 32
// lowercase hexadecimal characters. Older installations stored the same value
// without the separator ("naver" + hex); Normalize upgrades those to the
// canonical form so a value read from any location compares equal.
package machineid
