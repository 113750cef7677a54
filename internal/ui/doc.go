// Package ui implements the quotebox terminal interface with Bubble Tea.
//
// The model reads everything from the engine's state snapshot, refreshed on
// a one second tick, and calls back into the engine through tea.Cmds so the
// event loop never blocks on storage or the network.
//
// # Layout
//
//	┌─────────────────────────────────────────────────────┐
//	│ quotebox │ category All │ 12 quotes │ synced 10:42  │  header
//	│ Sync: fetched 5, 1 new                              │  banner
//	│                                                     │
//	│          ╭──────────────────────────────╮           │
//	│          │ “In the middle of every ...” │           │  quote card
//	│          │ Wisdom                       │           │
//	│          ╰──────────────────────────────╯           │
//	│ activity                                            │  log tail
//	│ n/space Show another quote  f Cycle category ...    │  footer
//	└─────────────────────────────────────────────────────┘
//
// # Dialogs
//
// Adding a quote, importing a file and resolving a sync conflict are modals
// implementing Modal. A modal gets every key first and reports when it
// closes; confirming emits a message the root model turns into an engine
// call. Conflicts open automatically after a cycle reports them under the
// manual policy; esc postpones a conflict until the user presses c.
//
// # Themes
//
// Nightfox, Kanagawa and Slate; T cycles and the choice is saved as a
// preference.
package ui
