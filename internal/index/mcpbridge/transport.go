package mcpbridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"

	"cre/internal/logging"
)

// Transport sends JSON-RPC requests and returns their raw results.
// It is an interface so tests can substitute an in-process fake.
type Transport interface {
	Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error)
	Notify(method string, params interface{}) error
	Close() error
}

// StdioTransport runs the tool server as a subprocess and speaks
// newline-delimited JSON-RPC over its stdin/stdout.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *logging.Logger

	nextID  int64
	mu      sync.Mutex
	pending map[int64]chan *Message
	closed  bool
}

// NewStdioTransport starts the server process and begins reading replies.
func NewStdioTransport(command string, args []string, logger *logging.Logger) (*StdioTransport, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}

	t := &StdioTransport{
		cmd:     cmd,
		stdin:   stdin,
		logger:  logger.With("transport"),
		pending: make(map[int64]chan *Message),
	}
	go t.readLoop(stdout)
	return t, nil
}

// readLoop dispatches responses to their waiting callers.
func (t *StdioTransport) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			t.logger.Warn("Dropping unparseable server message", logging.Fields{
				"error": err.Error(),
			})
			continue
		}
		if !msg.IsResponse() {
			// Server-initiated notifications are ignored; the engine
			// carries everything it needs in the result and trace.
			continue
		}

		id, ok := numericID(msg.Id)
		if !ok {
			continue
		}

		t.mu.Lock()
		ch := t.pending[id]
		delete(t.pending, id)
		t.mu.Unlock()

		if ch != nil {
			ch <- &msg
		}
	}

	// Reader ended: fail everything still outstanding.
	t.mu.Lock()
	for id, ch := range t.pending {
		delete(t.pending, id)
		ch <- &Message{Error: &RPCError{Code: InternalError, Message: "server closed the connection"}}
	}
	t.closed = true
	t.mu.Unlock()
}

// Call sends a request and waits for its response or ctx cancellation.
func (t *StdioTransport) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := atomic.AddInt64(&t.nextID, 1)
	ch := make(chan *Message, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, fmt.Errorf("transport closed")
	}
	t.pending[id] = ch
	t.mu.Unlock()

	if err := t.write(NewRequest(id, method, params)); err != nil {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return nil, err
	}

	select {
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return nil, ctx.Err()
	case msg := <-ch:
		if msg.Error != nil {
			return nil, msg.Error
		}
		return msg.Result, nil
	}
}

// Notify sends a notification without waiting for a reply.
func (t *StdioTransport) Notify(method string, params interface{}) error {
	return t.write(NewNotification(method, params))
}

func (t *StdioTransport) write(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("transport closed")
	}
	_, err = t.stdin.Write(data)
	return err
}

// Close shuts the subprocess down.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	_ = t.stdin.Close()
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
	return t.cmd.Wait()
}

func numericID(id interface{}) (int64, bool) {
	switch v := id.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
