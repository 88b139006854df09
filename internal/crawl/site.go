package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Site is a locally started documentation server.
type Site struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
	log  *slog.Logger
}

// StartSite runs command through the shell. The process is interrupted when
// ctx ends or Stop is called.
func StartSite(ctx context.Context, command string, output io.Writer, log *slog.Logger) (*Site, error) {
	if output == nil {
		output = os.Stderr
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start site %q: %w", command, err)
	}
	log.Info("site started", "command", command, "pid", cmd.Process.Pid)

	s := &Site{cmd: cmd, done: make(chan struct{}), log: log}
	go func() {
		s.err = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

// Done is closed when the server process exits.
func (s *Site) Done() <-chan struct{} { return s.done }

// Err returns the exit error once Done is closed.
func (s *Site) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Stop interrupts the server and waits for it to exit.
func (s *Site) Stop() {
	select {
	case <-s.done:
		return
	default:
	}
	_ = s.cmd.Process.Signal(os.Interrupt)
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		_ = s.cmd.Process.Kill()
		<-s.done
	}
	s.log.Info("site stopped")
}
