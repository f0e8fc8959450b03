// Package monitor implements the procdash dashboard: a continuously
// refreshing terminal table of managed processes with per-metric trends and
// eased number transitions.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: the last applied snapshot, rows, selection and view mode
//   - Update: poll ticks and results, animation frames, keys, action results
//   - View: header, table (or detail/editor), footer
//
// # Key Components
//
//	Poller      - fetches snapshots on a cadence, one in flight, in order
//	History     - bounded per-channel ring buffers per process
//	Animator    - eases labels from the previous snapshot's values
//	BuildTable  - turns a snapshot into rows, feeding History and Animator
//	Dispatcher  - one backend call per user action, failures to the footer
//	editorView  - secret prompt and huh forms over editor.Editor
//
// # Message Flow
//
//  1. pollTickMsg fires every poll interval (default 500ms)
//  2. Poller.Poll starts a request unless one is still in flight
//  3. pollResultMsg arrives; stale results are dropped by sequence number
//  4. BuildTable records history, starts label animations and sweeps
//     processes that have been absent too long
//  5. frameMsg runs every 16ms only while an animation is active
//
// A failed poll keeps the last table on screen and shows the error in the
// header.
//
// # Trends
//
// Trend geometry is shared by the terminal renderer (braille area charts,
// RenderTrendCells) and the SVG renderer used by HTML export
// (RenderTrendSVG): samples are spread evenly across the width and scaled
// against a fixed 0-100 range.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	j/k, ↑/↓    - Select process
//	Enter / Esc - Open / close the detail view, dismiss a notice
//	s x r o     - Start, stop, restart, open folder
//	R C N       - Restart all, kill cmd, kill node (confirm with y)
//	S           - Cycle sort order
//	g           - Toggle inline trends
//	e           - Config editor
//	?           - Toggle help overlay
package monitor
