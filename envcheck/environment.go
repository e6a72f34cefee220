package envcheck

import (
	"errors"
	"io/fs"
	"os"
	"runtime/debug"
)

// Environment is the read-only view of the machine that probes inspect.
type Environment interface {
	ReadFile(name string) ([]byte, error)
	Exists(name string) bool
	Geteuid() int
	Getenv(key string) string
	// BuildSettings returns the build settings recorded in the binary
	// (e.g. "-gcflags"), empty when unavailable.
	BuildSettings() map[string]string
}

type osEnvironment struct{}

// OS returns the Environment of the running process.
func OS() Environment { return osEnvironment{} }

func (osEnvironment) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (osEnvironment) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (osEnvironment) Geteuid() int { return os.Geteuid() }

func (osEnvironment) Getenv(key string) string { return os.Getenv(key) }

func (osEnvironment) BuildSettings() map[string]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	out := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		out[s.Key] = s.Value
	}
	return out
}

// MapEnvironment is an Environment backed by maps.
type MapEnvironment struct {
	Files map[string]string
	// Paths lists names that exist without content.
	Paths []string
	Euid  int
	Env   map[string]string
	Build map[string]string
}

func (m MapEnvironment) ReadFile(name string) ([]byte, error) {
	if data, ok := m.Files[name]; ok {
		return []byte(data), nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (m MapEnvironment) Exists(name string) bool {
	if _, ok := m.Files[name]; ok {
		return true
	}
	for _, p := range m.Paths {
		if p == name {
			return true
		}
	}
	return false
}

func (m MapEnvironment) Geteuid() int { return m.Euid }

func (m MapEnvironment) Getenv(key string) string { return m.Env[key] }

func (m MapEnvironment) BuildSettings() map[string]string { return m.Build }

func notExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
