package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/rendercut/internal/compile"
	"github.com/backmassage/rendercut/internal/display"
	"github.com/backmassage/rendercut/internal/encoder"
	"github.com/backmassage/rendercut/internal/media"
	"github.com/backmassage/rendercut/internal/prepare"
	"github.com/backmassage/rendercut/internal/timeline"
)

// defaultPollInterval is how often the synthetic progress estimate is
// refreshed while the encoder runs.
const defaultPollInterval = 500 * time.Millisecond

// StartResult is the outcome of a start request.
type StartResult struct {
	Accepted  bool     `json:"accepted"`
	Reason    string   `json:"reason,omitempty"`
	SessionID string   `json:"sessionId,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// CancelResult is the outcome of a cancel request. Cancelling when nothing
// is running (or after the process already exited) is benign and succeeds.
type CancelResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Session is the one live export. At most one exists at a time; it is
// destroyed whenever a terminal state is reached or cancellation completes.
type Session struct {
	ID         string
	Handle     string
	OutputPath string
	StartedAt  time.Time

	scratchDir string
	duration   time.Duration
	cancelled  bool
}

// Controller drives export sessions against a registry and a supervisor.
type Controller struct {
	log        hclog.Logger
	registry   media.Registry
	supervisor *encoder.Supervisor
	scratchDir string

	// EncoderBinary overrides the compiled command's encoder binary when
	// non-empty. Tests point it at a stub.
	EncoderBinary string

	pollInterval time.Duration

	mu       sync.Mutex
	session  *Session
	progress Progress
}

// NewController returns a Controller writing per-session temp files under
// scratchDir.
func NewController(log hclog.Logger, registry media.Registry, supervisor *encoder.Supervisor, scratchDir string) *Controller {
	return &Controller{
		log:          log.Named("session"),
		registry:     registry,
		supervisor:   supervisor,
		scratchDir:   scratchDir,
		pollInterval: defaultPollInterval,
		progress:     Progress{Stage: StageIdle},
	}
}

// StartExport validates, compiles, and launches an export. A second start
// while a session is active is rejected before any process is spawned.
// Validation and compilation failures come back as structured rejections,
// never as panics or late errors.
func (c *Controller) StartExport(tracks []timeline.Track, opts compile.Options) StartResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return StartResult{Accepted: false, Reason: "an export is already in progress"}
	}

	id := uuid.NewString()
	c.progress = Progress{Stage: StagePreparing, Message: "preparing timeline"}

	scratch := filepath.Join(c.scratchDir, "export-"+id)
	opts.ScratchDir = scratch

	prepared, val := prepare.Prepare(tracks, c.registry)
	if !val.OK() {
		c.progress = Progress{Stage: StageIdle}
		return StartResult{Accepted: false, Reason: strings.Join(val.Errors, "; ")}
	}
	for _, w := range val.Warnings {
		c.log.Warn("timeline warning", "session", id, "warning", w)
	}

	cmd, err := compile.Compile(prepared, opts)
	if err != nil {
		c.progress = Progress{Stage: StageIdle}
		return StartResult{Accepted: false, Reason: err.Error()}
	}
	if c.EncoderBinary != "" {
		cmd.Binary = c.EncoderBinary
	}

	handle, results, err := c.supervisor.Start(context.Background(), cmd)
	if err != nil {
		os.RemoveAll(scratch)
		c.progress = Progress{Stage: StageIdle}
		return StartResult{Accepted: false, Reason: fmt.Sprintf("failed to start encoder: %v", err)}
	}

	sess := &Session{
		ID:         id,
		Handle:     handle,
		OutputPath: cmd.OutputPath,
		StartedAt:  time.Now(),
		scratchDir: scratch,
		duration:   time.Duration(cmd.TotalDuration * float64(time.Second)),
	}
	c.session = sess
	c.progress = Progress{Stage: StageEncoding, Percent: progressFloor, Message: "encoding"}
	c.log.Info("export started", "session", id, "strategy", string(cmd.Strategy), "output", cmd.OutputPath)

	go c.monitor(sess, results)
	return StartResult{Accepted: true, SessionID: id, Warnings: val.Warnings}
}

// Progress returns the current user-visible export state.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// CancelExport requests cancellation of the active export. With no active
// session (or a process that already exited) this is a benign no-op that
// still reports success.
func (c *Controller) CancelExport() CancelResult {
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		return CancelResult{Success: true, Reason: "no active export"}
	}
	sess.cancelled = true
	handle := sess.Handle
	c.mu.Unlock()

	// Blocks for at most the supervisor's grace period.
	if err := c.supervisor.Cancel(handle); err != nil {
		return CancelResult{Success: false, Reason: err.Error()}
	}
	return CancelResult{Success: true}
}

// monitor advances the synthetic progress until the encoder exits, then
// settles the session into its terminal state and purges temp files.
func (c *Controller) monitor(sess *Session, results <-chan encoder.Result) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case res := <-results:
			c.finish(sess, res)
			return
		case <-ticker.C:
			c.tick(sess)
		}
	}
}

// tick bumps the estimate. Progress only ever moves forward.
func (c *Controller) tick(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess || c.progress.Stage != StageEncoding {
		return
	}
	if pct := EstimateProgress(time.Since(sess.StartedAt), sess.duration); pct > c.progress.Percent {
		c.progress.Percent = pct
	}
}

// finish settles the terminal state. All pending temp files are purged on
// every path — completion, error, and cancellation alike.
func (c *Controller) finish(sess *Session, res encoder.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	os.RemoveAll(sess.scratchDir)
	c.session = nil

	switch {
	case sess.cancelled:
		c.progress = Progress{Stage: StageIdle, Message: "export cancelled"}
		c.log.Info("export cancelled", "session", sess.ID)
	case res.Err != nil:
		c.progress = Progress{Stage: StageError, Message: fmt.Sprintf("export failed: %v", res.Err)}
		if perr, ok := res.Err.(*encoder.ProcessError); ok && perr.Stderr != "" {
			c.log.Error("encoder diagnostics", "session", sess.ID, "stderr", tail(perr.Stderr, 20))
		}
	default:
		c.progress = Progress{
			Stage:      StageComplete,
			Percent:    100,
			Message:    "export complete",
			OutputPath: res.OutputPath,
		}
		c.log.Info("export complete", "session", sess.ID, "output", res.OutputPath,
			"size", display.FormatBytes(res.OutputSize),
			"duration", display.FormatSeconds(time.Since(sess.StartedAt).Seconds()))
	}
}

// tail returns the last n lines of diagnostic text.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
