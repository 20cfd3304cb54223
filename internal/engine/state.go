package engine

//go:generate go tool stringer -type=State -trimprefix=State -output=state_string.go
//go:generate go tool stringer -type=CompileState -linecomment -output=compilestate_string.go

// State is the lifecycle state of an Executor.
type State int

const (
	StateUncompiled State = iota
	StateCompiled
	StateRunning
	StateFailedToCompile
)

// CompileState tells listeners of a Session where the code they see came
// from.
type CompileState int

const (
	CompileOriginal CompileState = iota // ORIGINAL
	CompileEdited                       // EDITED
	CompileSaved                        // SAVED
	CompileFailed                       // ERROR
)
