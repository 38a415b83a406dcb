// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for release discovery:
//  1. [DiscoveryView] : Watch a discovery batch run with live progress
//  2. [ReleaseListView] : Browse new or upcoming releases by followed artists
//  3. [DetailView] : Inspect one release (type, date, collaborators, link)
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the DiscoveryEngine, providing non-blocking status reporting during batches.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
