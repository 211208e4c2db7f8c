package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const stopGrace = 1200 * time.Millisecond

// child is a started helper process whose exit is observed in the background.
type child struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	exited chan struct{}
	err    error

	stopOnce sync.Once
}

func spawn(cmd *exec.Cmd) (*child, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	c := &child{cmd: cmd, stderr: &stderr, exited: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		close(c.exited)
	}()
	return c, nil
}

// exitedWithin reports whether the process ended before d elapsed.
func (c *child) exitedWithin(d time.Duration) bool {
	select {
	case <-c.exited:
		return true
	case <-time.After(d):
		return false
	}
}

// terminate interrupts the process, killing it if it lingers past the grace period.
func (c *child) terminate() error {
	c.stopOnce.Do(func() {
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Signal(os.Interrupt)
		}
		if !c.exitedWithin(stopGrace) && c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
			<-c.exited
		}
	})
	return ignoreExitStatus(c.err)
}

// failure describes an unrequested exit, with whatever the tool printed.
func (c *child) failure() error {
	if c.err == nil {
		return nil
	}
	if detail := c.stderrText(); detail != "" {
		return fmt.Errorf("%w: %s", c.err, detail)
	}
	return c.err
}

func (c *child) stderrText() string {
	return strings.TrimSpace(c.stderr.String())
}

// ignoreExitStatus drops the exit status of a process we asked to stop.
func ignoreExitStatus(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
