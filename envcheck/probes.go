package envcheck

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
)

// Default probe inputs.
var (
	DefaultRootPaths = []string{
		"/system/bin/su",
		"/system/xbin/su",
		"/sbin/su",
		"/su/bin/su",
		"/system/app/Superuser.apk",
		"/data/adb/magisk",
		"/data/local/tmp/magisk",
	}

	DefaultEmulatorMarkers = []string{
		"qemu",
		"virtualbox",
		"vmware",
		"bochs",
		"genymotion",
		"goldfish",
		"ranchu",
		"sdk_gphone",
		"generic_x86",
		"android sdk built for",
		"ro.kernel.qemu=1",
	}

	emulatorFiles = []string{
		"/sys/class/dmi/id/product_name",
		"/sys/class/dmi/id/sys_vendor",
		"/sys/class/dmi/id/board_vendor",
		"/system/build.prop",
	}
)

// ProbeConfig selects and tunes the built-in probes.
type ProbeConfig struct {
	// DebugBuild marks the binary as a debug build regardless of its
	// recorded build flags.
	DebugBuild bool `yaml:"debug_build"`

	AllowEmulator bool `yaml:"allow_emulator"`
	// AllowRootUser skips the effective-uid check; su binaries still fail.
	AllowRootUser bool `yaml:"allow_root_user"`

	RootPaths       []string `yaml:"root_paths"`
	EmulatorMarkers []string `yaml:"emulator_markers"`
}

// DefaultProbes returns the built-in probes for cfg.
func DefaultProbes(cfg ProbeConfig) []Probe {
	probes := []Probe{
		DebugBuildProbe{Debug: cfg.DebugBuild},
		DebuggerProbe{},
	}
	if !cfg.AllowEmulator {
		probes = append(probes, EmulatorProbe{Markers: cfg.EmulatorMarkers})
	}
	probes = append(probes, RootProbe{Paths: cfg.RootPaths, AllowRootUser: cfg.AllowRootUser})
	return probes
}

// DebugBuildProbe fails for debug builds: when Debug is set, or when the
// binary was compiled with optimizations or inlining disabled.
type DebugBuildProbe struct {
	Debug bool
}

func (DebugBuildProbe) Name() string { return "debug_build" }

func (p DebugBuildProbe) Probe(_ context.Context, env Environment) Finding {
	if p.Debug {
		return Fail("debug build")
	}
	for _, flag := range strings.Fields(env.BuildSettings()["-gcflags"]) {
		if _, after, ok := strings.Cut(flag, "="); ok {
			flag = after
		}
		if flag == "-N" || flag == "-l" {
			return Fail("debug build (gcflags %s)", flag)
		}
	}
	return Pass("release build")
}

// DebuggerProbe fails when a tracer is attached to the process.
type DebuggerProbe struct{}

func (DebuggerProbe) Name() string { return "debugger" }

func (DebuggerProbe) Probe(_ context.Context, env Environment) Finding {
	status, err := env.ReadFile("/proc/self/status")
	if err != nil {
		if notExist(err) {
			return Pass("no process status available")
		}
		return Fail("cannot read process status: %v", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(status))
	for sc.Scan() {
		value, ok := strings.CutPrefix(sc.Text(), "TracerPid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil && pid != 0 {
			return Fail("debugger attached (pid %d)", pid)
		}
		return Pass("no debugger attached")
	}
	return Pass("no debugger attached")
}

// EmulatorProbe fails when firmware or system properties identify an
// emulator or virtual machine.
type EmulatorProbe struct {
	// Markers are lower case substrings. Default: DefaultEmulatorMarkers
	Markers []string
}

func (EmulatorProbe) Name() string { return "emulator" }

func (p EmulatorProbe) Probe(_ context.Context, env Environment) Finding {
	markers := p.Markers
	if len(markers) == 0 {
		markers = DefaultEmulatorMarkers
	}
	for _, name := range emulatorFiles {
		data, err := env.ReadFile(name)
		if err != nil {
			continue
		}
		content := strings.ToLower(string(data))
		for _, m := range markers {
			if strings.Contains(content, m) {
				return Fail("emulator detected (%s)", m)
			}
		}
	}
	if env.Getenv("ANDROID_EMULATOR") != "" {
		return Fail("emulator detected (ANDROID_EMULATOR)")
	}
	return Pass("physical device")
}

// RootProbe fails when the process runs as root or a privilege escalation
// tool is installed.
type RootProbe struct {
	// Paths are checked for existence. Default: DefaultRootPaths
	Paths         []string
	AllowRootUser bool
}

func (RootProbe) Name() string { return "root" }

func (p RootProbe) Probe(_ context.Context, env Environment) Finding {
	if !p.AllowRootUser && env.Geteuid() == 0 {
		return Fail("running as root")
	}
	paths := p.Paths
	if len(paths) == 0 {
		paths = DefaultRootPaths
	}
	for _, path := range paths {
		if env.Exists(path) {
			return Fail("root access tool present (%s)", path)
		}
	}
	return Pass("no root access")
}
