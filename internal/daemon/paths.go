package daemon

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Paths are the per-user filesystem singletons the supervisor owns: the
// PID file, the listening socket, and the start lock. They are computed
// once at startup and threaded into the supervisor explicitly.
type Paths struct {
	PIDFile  string
	Socket   string
	LockFile string
}

// UserPaths derives the deterministic per-user paths. XDG_RUNTIME_DIR
// is preferred when set (it is already per-user and cleaned on logout);
// otherwise the files go under /tmp with the username in the name.
func UserPaths() Paths {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		prefix := filepath.Join(dir, "bws-ssh-agent")
		return Paths{
			PIDFile:  prefix + ".pid",
			Socket:   prefix + ".sock",
			LockFile: prefix + ".lock",
		}
	}
	return pathsFor(currentUsername())
}

func pathsFor(username string) Paths {
	prefix := fmt.Sprintf("/tmp/bws-%s-ssh-agent", username)
	return Paths{
		PIDFile:  prefix + ".pid",
		Socket:   prefix + ".sock",
		LockFile: prefix + ".lock",
	}
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
