// Package engine progressively computes and caches every pixelation level
// of one source image.
//
// An Engine owns a session: the source buffer, the level Plan, one
// write-once cache slot per level and the level the viewer currently wants
// to see (the selection). Background workers fill the slots while the
// foreground changes the selection and reads finished levels.
//
// # Scheduling
//
// The default StrategySweep walks the levels in ascending order. At the top
// of every step it re-reads the selection and, if that level is still
// missing, computes it out of turn before continuing the walk. This gives
// the selected level fast feedback without a priority queue, and every
// level is computed at most once.
//
// StrategyNearest always computes the missing level closest to the current
// selection, which keeps the neighbourhood of the selection warm while the
// user drags a slider.
//
// # Slots
//
// Each slot moves Empty → Computing → Ready, or Computing → Failed when the
// compute function returns an error. Ready is terminal. Claiming a slot is a
// compare-and-swap, so running several workers never computes a level
// twice. A Failed slot is only recomputed through Retry.
//
// # Notifications
//
// The Listener is invoked after a slot has become Ready (or Failed). Ready
// events for levels other than the selection at that moment are dropped
// unless Options.NotifyAll is set; the level is cached either way and can be
// read with Cached. Failures are always delivered.
//
// # Thread Safety
//
// SetSelection, Selection, Cached, Status and Cancel never block and are safe
// for concurrent use. The Listener runs on worker goroutines and must not
// block for long; with more than one worker it may be called concurrently.
package engine
