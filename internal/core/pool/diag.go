//go:build !release

package pool

// diagnostics enables the double-release scan. Build with -tags release to drop it.
const diagnostics = true
