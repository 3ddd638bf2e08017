package command

import "strings"

// ParseResult holds the parsed command word and its arguments.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the whitespace-separated words after the command.
	Args []string
	// RawArgs is the trimmed text after the command, spacing preserved.
	RawArgs string
}

// Parse splits a line into a command word and arguments.
//
// Postcondition: If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	word, rest, found := strings.Cut(line, " ")
	if !found {
		return ParseResult{Command: strings.ToLower(word)}
	}
	rest = strings.TrimSpace(rest)

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{
		Command: strings.ToLower(word),
		Args:    args,
		RawArgs: rest,
	}
}

// Sub parses the arguments as a subcommand line.
//
// Postcondition: Sub of a result without arguments has an empty Command.
func (p ParseResult) Sub() ParseResult {
	return Parse(p.RawArgs)
}
