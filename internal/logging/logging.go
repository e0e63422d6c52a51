// Package logging implements the local log sink named in §7: errors'
// full kind is routed here, while untrusted surfaces only ever see a
// generic message.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process-wide structured logger. Output defaults to
// stderr so it never interleaves with CLI stdout the user may be piping.
func New(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(parseLevel(level))
	return log
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Kind classifies an error into the families §7 names, for structured
// fields without leaking the error's message to an untrusted surface.
type Kind string

const (
	KindAuth     Kind = "auth"
	KindVault    Kind = "vault"
	KindCrypto   Kind = "crypto"
	KindStego    Kind = "stego"
	KindFragment Kind = "fragment"
	KindIO       Kind = "io"
)

// Internal logs err at Error level tagged with kind, for the local sink
// only. Callers at an untrusted boundary must still surface only a
// generic message to the caller ("internal error") — this function does
// not do that translation itself, it only records the truth locally.
func Internal(log *logrus.Logger, kind Kind, op string, err error) {
	log.WithFields(logrus.Fields{
		"kind": kind,
		"op":   op,
	}).Error(err)
}

// GenericMessage is the fixed string every untrusted surface should
// return in place of err's real message (§7).
const GenericMessage = "internal error"
