// Package logging provides the structured logger shared by cmd/coseutil's
// subcommands. The cbor and cose packages themselves stay logging-free;
// only the command layer logs, the same split ubirch-cose-client-go's
// protocol/cbor code keeps from its service layer.
package logging

import "github.com/sirupsen/logrus"

var base = logrus.StandardLogger()

func init() {
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetLevel adjusts the shared logger's verbosity, e.g. from a --verbose flag.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// For returns a logger annotated with the given CLI operation name, e.g.
// For("sign"), so every line it emits carries which subcommand produced it.
func For(operation string) logrus.FieldLogger {
	return base.WithField("op", operation)
}
