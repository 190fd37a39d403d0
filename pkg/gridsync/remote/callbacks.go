package remote

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// callbacks is the table of pending read callbacks. Each entry resolves at most once;
// after invoke or release the name is gone and later invocations are dropped.
type callbacks struct {
	mu      sync.Mutex
	pending map[string]chan *Payload
}

func newCallbacks() *callbacks {
	return &callbacks{pending: make(map[string]chan *Payload)}
}

func (c *callbacks) register(name string) <-chan *Payload {
	ch := make(chan *Payload, 1)
	c.mu.Lock()
	c.pending[name] = ch
	c.mu.Unlock()
	return ch
}

// invoke delivers p to the named callback. It reports false when no such callback is
// pending, which includes callbacks that already fired or were torn down.
func (c *callbacks) invoke(name string, p *Payload) bool {
	c.mu.Lock()
	ch, ok := c.pending[name]
	delete(c.pending, name)
	c.mu.Unlock()
	if !ok {
		return false
	}
	ch <- p
	return true
}

func (c *callbacks) release(name string) {
	c.mu.Lock()
	delete(c.pending, name)
	c.mu.Unlock()
}

func (c *callbacks) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// newCallbackName returns a name unique within the process lifetime. It is not meant to be
// unguessable.
func newCallbackName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("__sheetCallback_%d_%s", time.Now().UnixMilli(), suffix)
}

// invocation matches `name(arg)` with an optional `/**/` prefix and trailing semicolon.
var invocation = regexp.MustCompile(`(?s)^\s*(?:/\*\*/)?\s*([A-Za-z_$][\w$]*)\s*\((.*)\)\s*;?\s*$`)

// parseInvocation splits a callback script into the callee and its argument. A body that is
// already a JSON object yields an empty callee.
func parseInvocation(body []byte) (callee string, arg []byte, err error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		return "", []byte(trimmed), nil
	}
	m := invocation.FindStringSubmatch(trimmed)
	if m == nil {
		return "", nil, fmt.Errorf("response is not a callback invocation")
	}
	return m[1], []byte(m[2]), nil
}
