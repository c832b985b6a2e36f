package models

import "strings"

// CommandType enumerates the read-only chat commands.
type CommandType string

const (
	CommandShoppingList CommandType = "lista"
	CommandOrders       CommandType = "pedidos"
	CommandHelp         CommandType = "ajuda"
	CommandUnknown      CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// Arguments keep their original case; store codes are matched case-insensitively later.
func ParseCommand(message string) Command {
	tokens := strings.Fields(message)
	cmd := Command{Type: CommandUnknown, Raw: message}
	if len(tokens) == 0 {
		return cmd
	}

	head := NormalizeSearch(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandShoppingList), "list", "compras":
		cmd.Type = CommandShoppingList
	case string(CommandOrders), "orders":
		cmd.Type = CommandOrders
	case string(CommandHelp), "help":
		cmd.Type = CommandHelp
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
