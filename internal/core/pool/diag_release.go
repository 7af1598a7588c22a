//go:build release

package pool

// Release builds skip the double-release scan; duplicates are stored silently.
const diagnostics = false
