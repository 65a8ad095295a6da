// Package override stores per-file content type overrides.
//
// A user may force a file to be treated as a different content type than the
// one detected from its name. The [Store] keeps one entry per file, persists
// every mutation through a [Backend] and notifies subscribers so cached
// effective types can be invalidated. [RevertOperation] removes overrides for
// a selection of files.
package override
