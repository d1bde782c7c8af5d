package gofuncutil

import (
	"log"
	"runtime/debug"
)

// Go runs fn on a new goroutine, logging any panic with its stack before
// re-raising it. Session and transport goroutines otherwise die silently
// when the process log is the only output.
func Go(logger *log.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC: %v\n%s", r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}
