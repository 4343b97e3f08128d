// Package obslog is the engine's leveled debug logger, adapted from the
// teacher's VERBOSE_DEBUG/simLogVerbose build-tag convention
// (internal/engine/debug.go, debug_on.go, verbose_logging.go): logging is a
// compile-time no-op in the default build so the hot posting/expansion
// loops never pay for string formatting, and a `debug` build tag flips it
// on for development builds (`go build -tags debug`).
package obslog

import "log"

// Debugf logs a formatted debug line. It is a no-op unless the binary was
// built with -tags debug.
func Debugf(format string, args ...interface{}) {
	debugf(format, args...)
}

// Warnf logs a formatted warning line in every build. Used where a
// collaborator failure is demoted to a warning instead of aborting the
// run (sink write failures, subscriber errors).
func Warnf(format string, args ...interface{}) {
	log.Printf("warning: "+format, args...)
}

// Enabled reports whether debug logging is compiled in.
func Enabled() bool { return enabled }
