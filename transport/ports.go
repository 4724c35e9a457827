package transport

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"go.bug.st/serial/enumerator"
)

// ListSerialPorts returns a best-effort, sorted, de-duplicated list of
// available serial device names, so a caller can offer a picker instead of
// requiring the port name up front. Mirrors the teacher's enumerate-then-
// glob-fallback strategy (serial/ports_list.go): prefer the cross-platform
// enumerator, fall back to globbing known device-node patterns per OS.
func ListSerialPorts() []string {
	if ports, err := enumerator.GetDetailedPortsList(); err == nil && len(ports) > 0 {
		out := make([]string, 0, len(ports))
		seen := make(map[string]struct{}, len(ports))
		for _, p := range ports {
			if p == nil || p.Name == "" {
				continue
			}
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			out = append(out, p.Name)
		}
		sort.Strings(out)
		return out
	}

	switch runtime.GOOS {
	case "darwin":
		return listByGlob("/dev/cu.*", "/dev/tty.*")
	case "windows":
		return nil
	default:
		return listByGlob("/dev/ttyUSB*", "/dev/ttyACM*", "/dev/ttyS*")
	}
}

func listByGlob(patterns ...string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 16)
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if m == "" {
				continue
			}
			if _, err := os.Stat(m); err != nil {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
