// Package drive recognizes the spoken commands available in hands-free mode.
package drive

import "strings"

// Command is a recognized hands-free command.
type Command string

const (
	CommandNone   Command = ""
	CommandStop   Command = "stop"
	CommandReplay Command = "replay"
	CommandRewind Command = "rewind"
)

// Rule matches a transcript to a command.
type Rule struct {
	Command Command
	Match   func(normalized string) bool
}

// Rules are checked in order; the first match wins.
var Rules = []Rule{
	{Command: CommandStop, Match: containsAny("stop recap", "stop")},
	{Command: CommandReplay, Match: containsAny("replay recap", "play recap again", "replay")},
	{Command: CommandRewind, Match: containsAny("rewind 10", "rewind ten")},
}

// Classify returns the first command whose rule matches transcript, or CommandNone.
func Classify(transcript string) Command {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	if normalized == "" {
		return CommandNone
	}
	for _, rule := range Rules {
		if rule.Match(normalized) {
			return rule.Command
		}
	}
	return CommandNone
}

func containsAny(phrases ...string) func(string) bool {
	return func(text string) bool {
		for _, phrase := range phrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
		return false
	}
}
