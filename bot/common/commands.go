package common

// CommandInfo describes a chat command for help output
type CommandInfo struct {
	Name  string // without prefix
	Usage string
	Admin bool
}
