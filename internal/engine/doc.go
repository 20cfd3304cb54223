// Package engine compiles generated mapping code and runs it against source
// records.
//
// Executor is the bulk variant: compiled once, then run concurrently for
// every record with a fresh builder per call. Session is the interactive
// variant used while a curator edits a mapping: it owns its own compiler
// context, recompiles on every change on a single background worker and
// publishes the outcome to listeners.
package engine
