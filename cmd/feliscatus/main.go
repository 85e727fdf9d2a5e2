// Command feliscatus is the UCI engine binary: it wires internal/uci,
// internal/config, and internal/pool together over stdin/stdout, mirroring
// the teacher's own Run(variant, protocol, bookBlob) entrypoint
// (interface.go) reduced to this spec's single protocol and variant.
package main

import (
	"os"

	"github.com/op/go-logging"

	"github.com/rudzen/feliscatus-sub000/internal/uci"
)

func main() {
	logging.SetBackend(logging.NewLogBackend(os.Stderr, "", 0))
	logging.SetFormatter(logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`))

	engine := uci.New(os.Stdout)
	engine.Run(os.Stdin)
}
