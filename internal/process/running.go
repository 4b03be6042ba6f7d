package process

import (
	"os"

	"github.com/mitchellh/go-ps"
)

// FindRunning returns the PIDs of processes whose executable name equals name.
// The current process is never reported.
func FindRunning(name string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	thisProcessID := os.Getpid()

	var pids []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != name {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}
