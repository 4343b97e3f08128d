//go:build !debug

package obslog

const enabled = false

func debugf(format string, args ...interface{}) {}
