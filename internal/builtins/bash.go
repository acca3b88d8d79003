// ABOUTME: Persistent bash session tool with sentinel-delimited output reads.
// ABOUTME: A timed-out session is poisoned and must be restarted before reuse.

package builtins

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/2389/toolbelt/internal/tool"
)

const (
	bashSentinel    = "<<exit>>"
	bashOutputDelay = 200 * time.Millisecond
)

// BashTool executes commands in a persistent bash session. The session is
// started lazily on first use and replaced wholesale on restart.
type BashTool struct {
	session *bashSession
}

var _ tool.Tool = (*BashTool)(nil)

// NewBashTool returns a bash tool with no session started yet.
func NewBashTool() *BashTool {
	return &BashTool{}
}

func (t *BashTool) Name() string { return "bash" }

func (t *BashTool) Description() string {
	return `Execute a bash command in the terminal.
* Long running commands: For commands that may run indefinitely, it should be run in the background and the output should be redirected to a file, e.g. command = ` + "`python3 app.py > server.log 2>&1 &`" + `.
* Interactive: If a bash command returns exit code ` + "`-1`" + `, this means the process is not yet finished. The assistant must then send a second call to terminal with an empty ` + "`command`" + ` (which will retrieve any additional logs), or it can send additional text (set ` + "`command`" + ` to the text) to STDIN of the running process, or it can send command=` + "`ctrl+c`" + ` to interrupt the process.
* Timeout: If a command execution result says "Command timed out. Sending SIGINT to the process", the assistant should retry running the command in the background.`
}

func (t *BashTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "command", Type: tool.TypeString, Description: "The bash command to execute. Can be empty to view additional logs."},
		{Name: "restart", Type: tool.TypeBool, Default: false, Description: "Restart the bash session, discarding the old one."},
		{Name: "timeout", Type: tool.TypeInt, Default: 120, Description: "Seconds to wait for the command before giving up."},
	}
}

func (t *BashTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		timeout := time.Duration(args.Int("timeout", 120)) * time.Second

		if args.Bool("restart", false) {
			if t.session != nil {
				t.session.stop()
			}
			session, err := startBashSession(timeout)
			if err != nil {
				return tool.Failf("Bash execution failed: %v", err)
			}
			t.session = session
			return tool.Ok("Bash session restarted")
		}

		if t.session == nil {
			session, err := startBashSession(timeout)
			if err != nil {
				return tool.Failf("Bash execution failed: %v", err)
			}
			t.session = session
		} else {
			t.session.timeout = timeout
		}

		if !args.Has("command") {
			return tool.Fail("no command provided.")
		}
		return t.session.run(ctx, args.String("command"))
	})
}

// Close tears down the live session, if any.
func (t *BashTool) Close() {
	if t.session != nil {
		t.session.stop()
	}
}

// bashSession wraps one long-lived bash process. Output is pumped into
// locked buffers; run polls for the sentinel the way a human tails a log.
type bashSession struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   *lockedBuffer
	stderr   *lockedBuffer
	done     chan struct{}
	exitCode int
	timedOut bool
	timeout  time.Duration
}

func startBashSession(timeout time.Duration) (*bashSession, error) {
	cmd := exec.Command("bash")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	s := &bashSession{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  &lockedBuffer{},
		stderr:  &lockedBuffer{},
		done:    make(chan struct{}),
		timeout: timeout,
	}

	go pump(stdoutPipe, s.stdout)
	go pump(stderrPipe, s.stderr)
	go func() {
		_ = cmd.Wait()
		s.exitCode = cmd.ProcessState.ExitCode()
		close(s.done)
	}()

	return s, nil
}

func (s *bashSession) exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *bashSession) stop() {
	if s.exited() {
		return
	}
	killProcessGroup(s.cmd)
}

func (s *bashSession) run(ctx context.Context, command string) tool.Result {
	seconds := int(s.timeout / time.Second)

	if s.exited() {
		return tool.Failf("bash has exited with returncode %d", s.exitCode)
	}
	if s.timedOut {
		return tool.FailWith(tool.KindTimedOut,
			"timed out: bash has not returned in %d seconds and must be restarted", seconds)
	}

	if _, err := fmt.Fprintf(s.stdin, "%s; echo '%s'\n", command, bashSentinel); err != nil {
		return tool.Failf("Bash execution failed: %v", err)
	}

	deadline := time.Now().Add(s.timeout)
	ticker := time.NewTicker(bashOutputDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return tool.Failf("Bash execution failed: %v", ctx.Err())
		case <-ticker.C:
		}

		out := s.stdout.String()
		if idx := strings.Index(out, bashSentinel); idx >= 0 {
			output := strings.TrimSuffix(out[:idx], "\n")
			errText := strings.TrimSuffix(s.stderr.String(), "\n")
			s.stdout.Reset()
			s.stderr.Reset()

			res := tool.Ok(output)
			res.Error = errText
			return res
		}

		if time.Now().After(deadline) {
			s.timedOut = true
			output := strings.TrimSuffix(s.stdout.String(), "\n")
			errText := strings.TrimSuffix(s.stderr.String(), "\n")
			s.stdout.Reset()
			s.stderr.Reset()

			msg := fmt.Sprintf("Command timed out after %d seconds", seconds)
			if errText != "" {
				msg += "\nOriginal stderr: " + errText
			}
			res := tool.FailWith(tool.KindTimedOut, "%s", msg)
			res.Output = output
			return res
		}
	}
}

// lockedBuffer is a mutex-guarded byte buffer shared between the pump
// goroutines and the polling reader.
type lockedBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func pump(r io.Reader, w io.Writer) {
	_, _ = io.Copy(w, r)
}
