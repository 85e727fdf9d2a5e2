package uci

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rudzen/feliscatus-sub000/internal/perft"
	"github.com/rudzen/feliscatus-sub000/internal/position"
)

// runPerft runs the divide-by-move self-test of spec 6's `perft` command,
// printing each root move's subtree count followed by the total and the
// elapsed time, in the conventional perft-divide shape.
func runPerft(out io.Writer, b *position.Board, depth int) {
	if depth < 1 {
		fmt.Fprintln(out, "info string perft: depth must be >= 1")
		return
	}

	started := time.Now()
	divide := perft.Divide(b, depth)

	names := make([]string, 0, len(divide))
	for name := range divide {
		names = append(names, name)
	}
	sort.Strings(names)

	var total uint64
	for _, name := range names {
		n := divide[name]
		total += n
		fmt.Fprintf(out, "%s: %d\n", name, n)
	}

	elapsed := time.Since(started)
	fmt.Fprintf(out, "\nNodes searched: %d\n", total)
	fmt.Fprintf(out, "info string perft depth %d nodes %d time %d\n", depth, total, elapsed.Milliseconds())
}
