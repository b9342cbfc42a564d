package core

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// globalLogger is the package-wide logger, overridable by embedders the way
// the teacher's wallet.go exposes SetWalletLogger/globalLogger so a host
// process can route Keypom's structured logs into its own sink.
var globalLogger = log.New()

// SetLogger overrides the package-wide logger used for claim-machine phase
// transitions, refunds, and drop/key lifecycle events.
func SetLogger(l *log.Logger) {
	if l != nil {
		globalLogger = l
	}
}

func logger() *log.Logger { return globalLogger }

// noctx returns context.Background() for the internal host calls the store
// issues on its own behalf (access-key registration/removal) rather than on
// behalf of a caller-supplied request context.
func noctx() context.Context { return context.Background() }
