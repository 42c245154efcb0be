package session

import "time"

// CommandPhase discriminates CommandState's union.
type CommandPhase int

const (
	// CommandIdle is the state before a prompt has produced a command,
	// or after one has finished and no new input has begun.
	CommandIdle CommandPhase = iota
	// CommandRunning covers the window between OSC 133;C (the shell
	// handed control to the program it's about to execute) and the
	// matching OSC 133;D.
	CommandRunning
	// CommandFinished is a terminal, displayable state: the most
	// recently completed command's exit code, until the next prompt
	// cycle begins.
	CommandFinished
)

// CommandState is the command-lifecycle state machine spec §4.6's hook
// context tables observe indirectly through on_command_start/
// on_command_end.
type CommandState struct {
	Phase       CommandPhase
	CommandText string // the typed command; captured from the active line at OSC 133;C
	StartedAt   time.Time
	ExitCode    int
	HasExitCode bool
}
