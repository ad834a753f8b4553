// launcher.go manages the emulator process lifecycle: start with the
// configured conf file, and a kill fallback for a window that survives the
// close key combination.
package session

import (
	"fmt"
	"os/exec"
)

// Process is the handle the orchestrator keeps on a launched emulator.
type Process interface {
	Kill() error
}

// Launcher starts one emulator session.
type Launcher interface {
	Start() (Process, error)
}

// ExecLauncher launches the real emulator executable with its configuration
// file as the sole argument pair. There is no other IPC with the process.
type ExecLauncher struct {
	Path string
	Conf string
}

// Start launches the emulator and returns a handle to it.
func (l ExecLauncher) Start() (Process, error) {
	cmd := exec.Command(l.Path, "-conf", l.Conf)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launching emulator: %w", err)
	}

	// Reap the child when it exits so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()

	return cmd.Process, nil
}
