package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"github.com/bnema/bws-ssh-agent/internal/domain"
	"github.com/bnema/bws-ssh-agent/internal/ports"
)

// ChildEnvVar marks a supervisor-spawned foreground child. The child
// skips interactive logging and must never spawn another background
// instance.
const ChildEnvVar = "BWS_AGENT_CHILD"

const (
	pidFileMode = 0o600

	// graceWindow is how long a SIGTERM gets before escalation to
	// SIGKILL. Tuning choice, not a correctness contract.
	graceWindow = 500 * time.Millisecond
)

// Supervisor owns the daemon's process lifecycle: spawning the
// background child, liveness probing, staleness cleanup, and two-phase
// termination. It is the sole writer and deleter of the PID file and
// socket.
type Supervisor struct {
	paths  Paths
	logger *slog.Logger
	clock  ports.Clock
	grace  time.Duration

	executable func() (string, error)
	spawn      func(exe string, args []string, env []string) (int, error)
}

func NewSupervisor(paths Paths, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		paths:      paths,
		logger:     logger,
		clock:      ports.SystemClock{},
		grace:      graceWindow,
		executable: os.Executable,
		spawn:      spawnDetached,
	}
}

// Paths returns the filesystem locations this supervisor manages.
func (s *Supervisor) Paths() Paths {
	return s.paths
}

// Alive reports whether pid names a running process, using a zero
// signal so nothing is delivered. EPERM still means the process exists.
func Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// StartBackground spawns this executable again as a detached foreground
// child and records its PID. It fails if a live instance already holds
// the PID file and cleans up first if the holder is dead. It returns as
// soon as the child is spawned, without waiting for the socket bind.
func (s *Supervisor) StartBackground(configPath string) error {
	lock := flock.New(s.paths.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire start lock: %w", err)
	}
	if !locked {
		return errors.New("another start is in progress (lock held)")
	}
	defer func() { _ = lock.Unlock() }()

	pid, found, err := s.readPID()
	if err != nil {
		return err
	}
	if found {
		if Alive(pid) {
			return &domain.AlreadyRunningError{PID: pid}
		}
		s.logger.Debug("removing stale agent state", "pid", pid)
		if err := s.removeState(); err != nil {
			return err
		}
	}

	exe, err := s.executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	args := []string{"start", "--fg"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}

	childPID, err := s.spawn(exe, args, append(os.Environ(), ChildEnvVar+"=1"))
	if err != nil {
		return fmt.Errorf("spawn agent process: %w", err)
	}

	if err := s.writePID(childPID); err != nil {
		return err
	}

	s.logger.Info("agent started", "pid", childPID, "socket", s.paths.Socket)
	return nil
}

// Stop terminates a running agent: SIGTERM, a bounded grace window,
// then SIGKILL if it is still alive. A missing PID file is a no-op
// success and a dead holder is cleaned up as a successful stop. A
// corrupt PID file is a hard error and the file is left in place.
func (s *Supervisor) Stop() error {
	pid, found, err := s.readPID()
	if err != nil {
		return err
	}
	if !found {
		s.logger.Info("agent is not running")
		return nil
	}

	if !Alive(pid) {
		s.logger.Info("cleaning up stale agent state", "pid", pid)
		return s.removeState()
	}

	s.logger.Info("stopping agent", "pid", pid)
	if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("terminate agent %d: %w", pid, err)
	}

	s.clock.Sleep(s.grace)

	if Alive(pid) {
		s.logger.Warn("agent did not exit within grace window, forcing", "pid", pid)
		if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("kill agent %d: %w", pid, err)
		}
	}

	// The child removes its own state on a clean SIGTERM exit; deleting
	// an already-absent file is a no-op here.
	return s.removeState()
}

// Restart is Stop then StartBackground, nothing more.
func (s *Supervisor) Restart(configPath string) error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.StartBackground(configPath)
}

// StatusInfo is the outcome of a liveness probe.
type StatusInfo struct {
	Running bool
	Stale   bool
	PID     int
}

// Status probes without mutating any state.
func (s *Supervisor) Status() (StatusInfo, error) {
	pid, found, err := s.readPID()
	if err != nil {
		return StatusInfo{}, err
	}
	if !found {
		return StatusInfo{}, nil
	}
	if Alive(pid) {
		return StatusInfo{Running: true, PID: pid}, nil
	}
	return StatusInfo{Stale: true, PID: pid}, nil
}

func (s *Supervisor) readPID() (int, bool, error) {
	data, err := os.ReadFile(s.paths.PIDFile)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read PID file %s: %w", s.paths.PIDFile, err)
	}

	content := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(content)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q in %s", domain.ErrStalePIDFile, content, s.paths.PIDFile)
	}
	return pid, true, nil
}

func (s *Supervisor) writePID(pid int) error {
	if err := os.WriteFile(s.paths.PIDFile, []byte(strconv.Itoa(pid)), pidFileMode); err != nil {
		return fmt.Errorf("write PID file %s: %w", s.paths.PIDFile, err)
	}
	return nil
}

// removeState deletes the PID file and socket. Absence is fine; any
// other failure is reported, never swallowed.
func (s *Supervisor) removeState() error {
	for _, path := range []string{s.paths.PIDFile, s.paths.Socket} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

func spawnDetached(exe string, args []string, env []string) (int, error) {
	cmd := exec.Command(exe, args...)
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// Reap the child when it eventually exits so it never lingers as a
	// zombie if this process outlives it.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}
