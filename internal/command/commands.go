// Package command provides the session command table and line parser.
package command

// Categories for organizing commands.
const (
	CategoryTools   = "tools"
	CategorySession = "session"
)

// Handler identifiers mapping commands to session actions.
const (
	HandlerWheel  = "wheel"
	HandlerCoin   = "coin"
	HandlerDice   = "dice"
	HandlerNumber = "number"
	HandlerDraw   = "draw"
	HandlerReset  = "reset"
	HandlerStatus = "status"
	HandlerMute   = "mute"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
)

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the one-line summary shown by help.
	Help string
	// Usage lists the accepted subcommands, one per line.
	Usage []string
	// Category groups the command for help output.
	Category string
	// Handler selects the session action.
	Handler string
}

// BuiltinCommands returns every command a session understands.
func BuiltinCommands() []Command {
	return []Command{
		{
			Name: "wheel", Aliases: []string{"w"}, Category: CategoryTools, Handler: HandlerWheel,
			Help: "Spin a wheel of weighted-equal options",
			Usage: []string{
				"wheel                  show options",
				"wheel spin             spin the wheel",
				"wheel add <label>      add an option",
				"wheel remove <n>       remove option n",
				"wheel color <n> <hex>  recolor option n (#RRGGBB)",
				"wheel preset [name]    list presets or replace options with one",
			},
		},
		{
			Name: "coin", Aliases: []string{"c", "flip"}, Category: CategoryTools, Handler: HandlerCoin,
			Help:  "Flip a coin",
			Usage: []string{"coin                   flip the coin"},
		},
		{
			Name: "dice", Aliases: []string{"d", "roll"}, Category: CategoryTools, Handler: HandlerDice,
			Help: "Roll one to six six-sided dice",
			Usage: []string{
				"dice                   roll",
				"dice <n>               set the dice count and re-roll",
			},
		},
		{
			Name: "number", Aliases: []string{"n", "num"}, Category: CategoryTools, Handler: HandlerNumber,
			Help: "Pick a number from a range",
			Usage: []string{
				"number                 generate",
				"number range <a> <b>   set min and max",
				"number min <a>         set min",
				"number max <b>         set max",
				"number swap            exchange min and max",
				"number mode int|dec    integer or decimal mode",
				"number decimals <k>    decimal places (0-6)",
				"number negative on|off allow negative values",
				"number show            show settings and hint",
			},
		},
		{
			Name: "draw", Aliases: []string{"name", "names"}, Category: CategoryTools, Handler: HandlerDraw,
			Help: "Draw a name from a list",
			Usage: []string{
				"draw                   draw a winner",
				"draw add <name>...     add names (comma separated)",
				"draw clear             clear the name list",
				"draw list              show the candidates",
				"draw rule <r> on|off   dedupe, case or exclude",
				"draw duration <d>      short, medium or long",
				"draw winners           forget excluded winners",
			},
		},
		{
			Name: "reset", Category: CategorySession, Handler: HandlerReset,
			Help:  "Restore a tool to defaults (asks for confirmation)",
			Usage: []string{"reset <tool>"},
		},
		{
			Name: "status", Aliases: []string{"st"}, Category: CategorySession, Handler: HandlerStatus,
			Help: "Show the state of every tool",
		},
		{
			Name: "mute", Category: CategorySession, Handler: HandlerMute,
			Help:  "Toggle the audio bell",
			Usage: []string{"mute [on|off]"},
		},
		{
			Name: "help", Aliases: []string{"?", "h"}, Category: CategorySession, Handler: HandlerHelp,
			Help:  "Show commands, or usage for one command",
			Usage: []string{"help [command]"},
		},
		{
			Name: "quit", Aliases: []string{"exit", "q"}, Category: CategorySession, Handler: HandlerQuit,
			Help: "Disconnect",
		},
	}
}
