package workload

import (
	"fmt"
	"io"
	"sync"
)

// tracePrinter writes the human readable transaction trace. Lines of concurrent workers may interleave,
// each single line is written atomically.
type tracePrinter struct {
	mu           sync.Mutex
	out          io.Writer
	transactions bool
	readKeys     bool
	transferKeys bool
}

func (p *tracePrinter) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *tracePrinter) trace(format string, args ...any) {
	if p.transactions {
		p.line(format, args...)
	}
}

func (p *tracePrinter) start(op Operation) {
	p.trace("-state START -op %s", op)
}

func (p *tracePrinter) end(op Operation, ok bool) {
	success := "OK"
	if !ok {
		success = "ERROR"
	}

	p.trace("-state END -success %s -op %s", success, op)
}

func (p *tracePrinter) readKey(index int64) {
	if p.readKeys {
		p.line("*** R\t%d", index)
	}
}

func (p *tracePrinter) transferPair(first, second int64) {
	if p.transferKeys {
		p.line("*** T\t%d\t%d", first, second)
	}
}
