// Package source provides process-output sources for the build monitor:
// implementations that expose the incrementally available text of a
// long-running build, either by spawning the build command under a
// pseudo-terminal or by attaching to an existing tmux pane.
package source

import "errors"

// maxFetchBytes bounds how much text a single Fetch returns. Anything
// beyond the cap stays buffered for the next call, so a monitor cycle
// never has to chew through an unbounded backlog at once.
const maxFetchBytes = 256 * 1024

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("source: closed")
