package sink

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/matgreaves/evtrace/evtspec"
)

// Console writes formatted lines to a writer (stdout in production). At
// most one Console sink may be installed at a time. It is unnamed and
// has no rotation or file capability (§4.2's capability matrix).
type Console struct {
	out   io.Writer
	opts  FormatOptions
	chain *FilterChain

	mu sync.Mutex

	disabled bool
}

// consoleInstalled enforces the single-instance rule across the process.
// It is reset by Close so a demoted or reconfigured sink can be replaced.
var consoleInstalled int32

// NewConsole constructs a Console sink writing to out. It returns
// ConflictingState if a Console sink already exists and has not been
// closed.
func NewConsole(out io.Writer, filters *FilterChain) (*Console, error) {
	if !atomic.CompareAndSwapInt32(&consoleInstalled, 0, 1) {
		return nil, evtspec.NewError(evtspec.ConflictingState, "NewConsole", "a console sink is already installed", nil)
	}
	return &Console{out: out, opts: DefaultFormatOptions, chain: filters}, nil
}

func (c *Console) ID() string         { return "" }
func (c *Console) Kind() evtspec.Kind { return evtspec.KindConsole }

func (c *Console) SetFormatOptions(opts FormatOptions) { c.opts = opts }
func (c *Console) SetDisabled(disabled bool)           { c.disabled = disabled }

func (c *Console) Emit(ev evtspec.Event) error {
	if c.disabled {
		return nil
	}
	line := FormatLine(ev, c.opts, ev.Timestamp)
	if !c.chain.MatchLine(line) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

func (c *Console) Flush() error { return nil }

// Close releases the single-instance slot, allowing a subsequent
// NewConsole call to succeed.
func (c *Console) Close() error {
	atomic.StoreInt32(&consoleInstalled, 0)
	return nil
}
