package encoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rendercut/internal/compile"
)

// writeStub creates a fake encoder executable. Like ffmpeg, it treats the
// last argument as the output path.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	script := "#!/bin/sh\nfor a in \"$@\"; do out=\"$a\"; done\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// stubOK writes a minimal valid mp4 header to the output path.
const stubOK = `printf '\000\000\000\040ftypisom\000\000\000\000data' > "$out"`

func testCommand(t *testing.T, binary string) *compile.Command {
	t.Helper()
	scratch := t.TempDir()
	return &compile.Command{
		Binary:      binary,
		Passthrough: true,
		ConcatList:  filepath.Join(scratch, "concat.txt"),
		Artifacts: []compile.Artifact{
			{Path: filepath.Join(scratch, "concat.txt"), Data: []byte("ffconcat version 1.0\n")},
		},
		Container:  compile.ContainerMP4,
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Overwrite:  true,
	}
}

func awaitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("encoder result not delivered")
		return Result{}
	}
}

func TestSupervisor_SuccessfulRun(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, writeStub(t, stubOK))

	handle, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	assert.Equal(t, cmd.OutputPath, res.OutputPath)
	assert.Greater(t, res.OutputSize, int64(0))
	assert.Equal(t, 0, sup.Active())

	// The concat list artifact must be gone; the output must remain.
	assert.NoFileExists(t, cmd.ConcatList)
	assert.FileExists(t, cmd.OutputPath)
}

func TestSupervisor_NonZeroExitIsProcessError(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, writeStub(t, `echo "muxer choked" >&2; exit 1`))

	_, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)

	res := awaitResult(t, ch)
	var perr *ProcessError
	require.ErrorAs(t, res.Err, &perr)
	assert.Contains(t, perr.Stderr, "muxer choked")
	assert.NoFileExists(t, cmd.ConcatList, "temps must be deleted on failure too")
	assert.Equal(t, 0, sup.Active())
}

func TestSupervisor_EmptyOutputIsProcessError(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, writeStub(t, `: > "$out"`))

	_, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)

	res := awaitResult(t, ch)
	var perr *ProcessError
	require.ErrorAs(t, res.Err, &perr)
	assert.Contains(t, perr.Reason, "empty")
	assert.NoFileExists(t, cmd.OutputPath, "broken artifact must not be left behind")
}

func TestSupervisor_MalformedHeaderIsProcessError(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, writeStub(t, `printf 'this is not an mp4 at all' > "$out"`))

	_, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)

	res := awaitResult(t, ch)
	var perr *ProcessError
	require.ErrorAs(t, res.Err, &perr)
	assert.Contains(t, perr.Reason, "not a valid mp4")
}

func TestSupervisor_CancelRunningProcess(t *testing.T) {
	sup := New(hclog.NewNullLogger(), 2*time.Second)
	cmd := testCommand(t, writeStub(t, `sleep 30`))

	handle, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)

	require.NoError(t, sup.Cancel(handle))
	res := awaitResult(t, ch)
	assert.Error(t, res.Err)
	assert.Equal(t, 0, sup.Active())
	assert.NoFileExists(t, cmd.ConcatList)
}

func TestSupervisor_CancelAfterExitIsNoOp(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, writeStub(t, stubOK))

	handle, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)
	res := awaitResult(t, ch)
	require.NoError(t, res.Err)

	// The process already exited and left the table: this must succeed
	// silently and leave no entry behind.
	assert.NoError(t, sup.Cancel(handle))
	assert.Equal(t, 0, sup.Active())
}

func TestSupervisor_MaterializesInMemoryInputs(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, writeStub(t, stubOK))
	scratch := filepath.Dir(cmd.ConcatList)
	cmd.Inputs = []compile.Input{{
		Path: filepath.Join(scratch, "recording.webm"),
		Data: []byte("in-memory recording payload"),
	}}

	_, ch, err := sup.Start(context.Background(), cmd)
	require.NoError(t, err)
	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	assert.NoFileExists(t, cmd.Inputs[0].Path, "materialized input must be deleted after the run")
}

func TestSupervisor_SpawnFailureCleansUp(t *testing.T) {
	sup := New(hclog.NewNullLogger(), time.Second)
	cmd := testCommand(t, "/nonexistent/encoder-binary")

	_, _, err := sup.Start(context.Background(), cmd)
	require.Error(t, err)
	assert.NoFileExists(t, cmd.ConcatList)
	assert.Equal(t, 0, sup.Active())
}
