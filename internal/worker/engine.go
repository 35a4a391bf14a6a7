package worker

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Engine launches worker generations. One generation is one lifetime of the
// optimizer process; a Channel replaces generations wholesale on abort.
type Engine interface {
	Start() (Generation, error)
}

// Generation is a live worker process speaking line-delimited JSON.
// Send writes one request line; Recv blocks for the next response line and
// returns an error once the generation is dead. Stop terminates the process.
type Generation interface {
	Send(line []byte) error
	Recv() ([]byte, error)
	Stop() error
	PID() int
}

// Response lines can carry whole documents; cap them well above any SVG a
// browser would realistically hold.
const maxLineBytes = 32 << 20

// ProcEngine spawns the configured optimizer binary with stdin/stdout pipes.
type ProcEngine struct {
	Bin  string
	Args []string
	Log  zerolog.Logger
}

func (e *ProcEngine) Start() (Generation, error) {
	cmd := exec.Command(e.Bin, e.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout: %w", err)
	}
	// Capture stderr for diagnostics (kept in-memory; tail is included on failure)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start optimizer worker: %w", err)
	}
	e.Log.Info().Str("bin", e.Bin).Int("pid", cmd.Process.Pid).Msg("worker generation started")

	g := &procGeneration{
		cmd:     cmd,
		stdin:   stdin,
		scanner: bufio.NewScanner(stdout),
		stderr:  &stderr,
		waitErr: make(chan error, 1),
	}
	g.scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	go func() { g.waitErr <- cmd.Wait() }()
	return g, nil
}

type procGeneration struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	stderr  *bytes.Buffer
	waitErr chan error

	wmu sync.Mutex
}

func (g *procGeneration) PID() int { return g.cmd.Process.Pid }

func (g *procGeneration) Send(line []byte) error {
	g.wmu.Lock()
	defer g.wmu.Unlock()
	_, err := g.stdin.Write(line)
	return err
}

func (g *procGeneration) Recv() ([]byte, error) {
	if g.scanner.Scan() {
		// Scanner reuses its buffer; hand out a copy.
		line := make([]byte, len(g.scanner.Bytes()))
		copy(line, g.scanner.Bytes())
		return line, nil
	}
	if err := g.scanner.Err(); err != nil {
		return nil, err
	}
	if tail := stderrTail(g.stderr); tail != "" {
		return nil, fmt.Errorf("worker exited: %s", tail)
	}
	return nil, io.EOF
}

// Stop terminates the process: close stdin, SIGTERM, then kill after a grace
// period. It must not take wmu: a Send blocked on a full pipe holds the lock
// until this very close unblocks it, and stdin is an *os.File, safe to close
// under a concurrent write.
func (g *procGeneration) Stop() error {
	_ = g.stdin.Close()
	if g.cmd.Process == nil {
		return nil
	}
	_ = g.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-g.waitErr:
		// exited gracefully
	case <-time.After(2 * time.Second):
		_ = g.cmd.Process.Kill()
		<-g.waitErr
	}
	return nil
}

func stderrTail(b *bytes.Buffer) string {
	tail := b.String()
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	return tail
}
