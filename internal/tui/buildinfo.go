package tui

import "fmt"

// BuildInfo is the version metadata shown by --version and the help dialog.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// ShortCommit returns the first seven characters of the commit hash.
func (b BuildInfo) ShortCommit() string {
	if len(b.Commit) > 7 {
		return b.Commit[:7]
	}
	return b.Commit
}

// String formats the metadata as "version (commit) date".
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (%s) %s", b.Version, b.ShortCommit(), b.Date)
}
