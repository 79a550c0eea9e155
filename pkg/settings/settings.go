// Package settings provides build metadata, per-run configuration, and
// context helpers used across the otree CLI and library packages.
package settings

import (
	"errors"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "otree"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// ErrLiveReloadStdin is returned by Run.Validate when live reload is asked
// for on a document that has no file behind it.
var ErrLiveReloadStdin = errors.New("--live-reload needs a file argument, stdin cannot be watched")

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Mode is what a run does with the loaded document.
type Mode string

const (
	ModeBrowse  Mode = "browse"
	ModeTree    Mode = "tree"
	ModePayload Mode = "payload"
)

// InputSettings describes where the document comes from.
// FromStdin is set when no path was given and stdin is not a terminal.
type InputSettings struct {
	Path      string
	FromStdin bool
	Format    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	Mode       Mode
	Input      InputSettings
	NoColor    bool
	LiveReload bool
	LogFile    string
}

// NewRun returns the settings of a browse run over input.
func NewRun(input InputSettings) *Run {
	return &Run{
		Mode:  ModeBrowse,
		Input: input,
	}
}

// Watchable reports whether the input can be watched for changes.
func (r *Run) Watchable() bool {
	return r.Input.Path != "" && !r.Input.FromStdin
}

// Validate checks that the combination of settings can run.
func (r *Run) Validate() error {
	if r.LiveReload && r.Mode == ModeBrowse && !r.Watchable() {
		return ErrLiveReloadStdin
	}
	return nil
}
