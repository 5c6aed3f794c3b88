package exception

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
)

// SafeGo runs fn in a goroutine and keeps a panic inside it from taking the node down.
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the node cannot live without: after
// logging the panic the process exits.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", fmt.Sprintf("Panic in %s: %v\n%s", name, r, debug.Stack()))
				os.Exit(1)
			}
		}()
		fn()
	}()
}

// Recover must be deferred directly. It counts and logs a panic and swallows it.
func Recover(name string) {
	if r := recover(); r != nil {
		monitoring.IncreasePanicCount()
		logx.Error("PANIC", fmt.Sprintf("Panic in %s: %v\n%s", name, r, debug.Stack()))
	}
}
