// Package integration holds end-to-end tests that run the wired application
// against a registry served over HTTP and persistence in a temp directory.
package integration
