package backend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"syscall"
	"time"
)

// engineProcess manages one inference server subprocess.
type engineProcess struct {
	cmd     *exec.Cmd
	baseURL string
	done    chan struct{}
}

// freePort asks the kernel for an unused loopback port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to allocate port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// checkBinaryInstalled verifies that the engine executable is on PATH.
func checkBinaryInstalled(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s is not installed or not in PATH: %w", binary, err)
	}
	return nil
}

// startEngine launches the server binary and streams its combined output to
// logWriter line by line. The returned process is not yet ready to serve;
// callers must poll waitReady.
func startEngine(binary string, args []string, port int, logWriter io.Writer) (*engineProcess, error) {
	if err := checkBinaryInstalled(binary); err != nil {
		return nil, err
	}

	cmd := exec.Command(binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", binary, err)
	}

	p := &engineProcess{
		cmd:     cmd,
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		done:    make(chan struct{}),
	}

	go streamLines(stderr, logWriter)
	go streamLines(stdout, logWriter)
	go func() {
		cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

// streamLines copies r to w a line at a time so partial output still reaches
// the log view while the engine is warming up.
func streamLines(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
}

// waitReady polls healthURL until the engine answers 200, the process exits,
// or the timeout elapses.
func (p *engineProcess) waitReady(ctx context.Context, healthURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.After(timeout)
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			p.stop()
			return ctx.Err()
		case <-p.done:
			return fmt.Errorf("engine exited during startup")
		case <-deadline:
			p.stop()
			return fmt.Errorf("engine not ready after %s", timeout)
		case <-tick.C:
			req, err := http.NewRequestWithContext(ctx, "GET", healthURL, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

// stop terminates the engine: SIGTERM first so it can release the model
// cleanly, SIGKILL if it has not exited after the grace period.
func (p *engineProcess) stop() {
	if p == nil || p.cmd.Process == nil {
		return
	}
	p.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-p.done:
		return
	case <-time.After(5 * time.Second):
	}
	p.cmd.Process.Kill()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
	}
}
