// Package settings holds build metadata and per-run settings for the
// tilemenu CLI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tilemenu"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Mode selects how a run presents the menu.
type Mode string

const (
	// ModeInteractive runs the terminal UI.
	ModeInteractive Mode = "interactive"
	// ModeSnapshot renders headless frames to a PNG file.
	ModeSnapshot Mode = "snapshot"
)

// Run holds the settings of a single execution.
type Run struct {
	MinLogLevel int8
	Mode        Mode
	// LogFile is where interactive runs write logs. Empty discards them.
	LogFile      string
	SnapshotPath string
}

// NewCliParams returns the settings of a default interactive CLI run.
func NewCliParams() *Run {
	return &Run{Mode: ModeInteractive}
}

// Interactive reports whether the run owns the terminal.
func (r *Run) Interactive() bool {
	return r.Mode != ModeSnapshot
}
