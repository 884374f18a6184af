package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rendercut/internal/compile"
)

// DefaultGracePeriod is how long Cancel waits for the encoder to exit after
// the termination signal before escalating to a forced kill.
const DefaultGracePeriod = 5 * time.Second

// ProcessError is the terminal failure of an encoder run: a non-zero exit
// or an unusable output artifact. Stderr carries the captured diagnostic
// text for support; it is never required reading for the end user.
type ProcessError struct {
	Reason string
	Stderr string
}

func (e *ProcessError) Error() string {
	return "encoder: " + e.Reason
}

// Result is delivered on the done channel when the encoder run finishes.
type Result struct {
	OutputPath string
	OutputSize int64
	Stderr     string
	Err        error // Nil on success; *ProcessError otherwise.
}

// process is one active-table entry.
type process struct {
	cmd  *exec.Cmd
	done chan struct{} // Closed after Wait returns and cleanup ran.
}

// Supervisor spawns and tracks encoder processes. The active-process table
// is the only mutable shared state between completion and cancellation
// paths; both go through the mutex and treat a missing handle as benign.
type Supervisor struct {
	log   hclog.Logger
	grace time.Duration

	mu    sync.Mutex
	procs map[string]*process
}

// New returns a Supervisor with the given cancellation grace period
// (DefaultGracePeriod when zero).
func New(log hclog.Logger, grace time.Duration) *Supervisor {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Supervisor{
		log:   log.Named("encoder"),
		grace: grace,
		procs: make(map[string]*process),
	}
}

// Start materializes the command's artifacts and in-memory inputs, spawns
// the encoder, and returns an opaque handle plus a channel that delivers
// exactly one Result. Temp files are deleted on every exit path.
func (s *Supervisor) Start(ctx context.Context, c *compile.Command) (string, <-chan Result, error) {
	temps, err := s.materialize(c)
	if err != nil {
		removeAll(temps)
		return "", nil, fmt.Errorf("materialize artifacts: %w", err)
	}

	args := c.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr, stdout bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stdout
	// On context cancellation, try a graceful stop first; WaitDelay forces
	// the kill if the encoder ignores it.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = s.grace

	if err := cmd.Start(); err != nil {
		removeAll(temps)
		return "", nil, fmt.Errorf("spawn %s: %w", args[0], err)
	}

	handle := uuid.NewString()
	p := &process{cmd: cmd, done: make(chan struct{})}
	s.mu.Lock()
	s.procs[handle] = p
	s.mu.Unlock()

	s.log.Info("encoder started", "handle", handle, "pid", cmd.Process.Pid, "output", c.OutputPath)

	resultCh := make(chan Result, 1)
	go func() {
		defer close(p.done)
		waitErr := cmd.Wait()

		s.mu.Lock()
		delete(s.procs, handle)
		s.mu.Unlock()

		// Temp deletion must hold even if the read-back below fails.
		defer removeAll(temps)

		res := Result{OutputPath: c.OutputPath, Stderr: stderr.String()}
		if waitErr != nil {
			s.log.Warn("encoder failed", "handle", handle, "error", waitErr)
			res.Err = &ProcessError{
				Reason: fmt.Sprintf("encoder exited abnormally: %v", waitErr),
				Stderr: res.Stderr,
			}
			os.Remove(c.OutputPath)
			resultCh <- res
			return
		}

		size, verr := verifyOutput(c.OutputPath, c.Container)
		if verr != nil {
			s.log.Warn("output verification failed", "handle", handle, "error", verr)
			res.Err = &ProcessError{Reason: verr.Error(), Stderr: res.Stderr}
			os.Remove(c.OutputPath)
			resultCh <- res
			return
		}

		res.OutputSize = size
		s.log.Info("encoder finished", "handle", handle, "size", size)
		resultCh <- res
	}()

	return handle, resultCh, nil
}

// Cancel requests termination of the process behind handle: a graceful
// signal first, then a forced kill after the grace period. An unknown
// handle means the process already completed and left the table; that is
// a no-op, not a fault.
func (s *Supervisor) Cancel(handle string) error {
	s.mu.Lock()
	p, ok := s.procs[handle]
	s.mu.Unlock()
	if !ok {
		s.log.Debug("cancel on finished process", "handle", handle)
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Exited between lookup and signal; the wait goroutine cleans up.
		s.log.Debug("terminate signal failed", "handle", handle, "error", err)
		return nil
	}

	select {
	case <-p.done:
	case <-time.After(s.grace):
		s.log.Warn("grace period expired, killing encoder", "handle", handle)
		_ = p.cmd.Process.Kill()
		<-p.done
	}
	return nil
}

// Active returns the number of tracked processes.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// materialize writes the command's artifacts and any in-memory input
// payloads to disk, returning every path it created.
func (s *Supervisor) materialize(c *compile.Command) ([]string, error) {
	var temps []string
	write := func(path string, data []byte) error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		temps = append(temps, path)
		return nil
	}

	for _, a := range c.Artifacts {
		if err := write(a.Path, a.Data); err != nil {
			return temps, err
		}
	}
	for _, in := range c.Inputs {
		if in.Data == nil {
			continue
		}
		if err := write(in.Path, in.Data); err != nil {
			return temps, err
		}
	}
	return temps, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
