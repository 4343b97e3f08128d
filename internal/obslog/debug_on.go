//go:build debug

package obslog

import (
	"log"
)

const enabled = true

func debugf(format string, args ...interface{}) {
	log.Printf(format, args...)
}
