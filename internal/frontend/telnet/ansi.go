// Package telnet serves chance sessions over Telnet with ANSI styling.
package telnet

import (
	"fmt"
	"strconv"
	"strings"
)

// ANSI escape sequences used by the session renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack  = "\033[90m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"

	// ClearLine returns the cursor to column 0 and erases the line.
	ClearLine = "\r\033[2K"
	// Bell rings the terminal bell.
	Bell = "\a"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// TrueColor returns the 24-bit foreground sequence for a #RRGGBB string,
// or the empty string when hex is malformed.
func TrueColor(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return ""
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff)
}

// Swatch renders a colored block followed by text.
func Swatch(hex, text string) string {
	c := TrueColor(hex)
	if c == "" {
		return "  " + text
	}
	return c + "██" + Reset + " " + text
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all CSI sequences removed, including the
// carriage return that opens ClearLine. Other carriage returns are kept.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\r' && strings.HasPrefix(s[i+1:], "\033[") {
			i++
			continue
		}
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < '@' || s[j] > '~') {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
