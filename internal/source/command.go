package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// CommandSource runs a build command under a pseudo-terminal and buffers
// its combined output. Build tools detect the PTY and emit the same
// progress markers they would on an interactive terminal, which is exactly
// what the classifier keys on.
//
// Fetch drains output accumulated since the previous call. All methods are
// safe for concurrent use, though the monitor loop is the only expected
// caller.
type CommandSource struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	offset int
	done   bool
	closed bool
	ptmx   io.Closer
}

// ptyStart is a test hook for spawning the command under a PTY.
var ptyStart = func(cmd *exec.Cmd) (io.ReadCloser, error) {
	return pty.Start(cmd)
}

// StartCommand spawns argv under a PTY in dir (empty means inherit) and
// begins draining its output in the background. The returned source
// reports completed once the process has exited and all output has been
// fetched.
func StartCommand(ctx context.Context, dir string, argv []string) (*CommandSource, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("source: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	f, err := ptyStart(cmd)
	if err != nil {
		return nil, fmt.Errorf("source: starting %q: %w", argv[0], err)
	}

	s := &CommandSource{ptmx: f}
	go s.drain(f, cmd)
	return s, nil
}

// drain copies PTY output into the buffer until the child exits. A read
// error on a PTY is the normal end-of-output condition on Linux (EIO once
// the child closes its side), so any error ends the drain.
func (s *CommandSource) drain(f io.Reader, cmd *exec.Cmd) {
	chunk := make([]byte, 32*1024)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			s.buf.Write(chunk[:n])
			s.mu.Unlock()
		}
		if err != nil {
			break
		}
	}
	// Reap the child; the exit status is reflected in its output, not here.
	_ = cmd.Wait()

	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
}

// Fetch implements monitor.Source. It returns the output produced since
// the previous call, capped per call, and whether the process has finished
// and been fully drained.
func (s *CommandSource) Fetch(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}

	pending := s.buf.Bytes()[s.offset:]
	if len(pending) > maxFetchBytes {
		pending = pending[:maxFetchBytes]
	}
	s.offset += len(pending)

	completed := s.done && s.offset == s.buf.Len()
	return string(pending), completed, nil
}

// Close releases the PTY. The child, if still running, receives SIGHUP
// from the kernel when its controlling terminal goes away.
func (s *CommandSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.ptmx.Close()
}
