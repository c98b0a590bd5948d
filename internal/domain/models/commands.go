package models

import "strings"

// CommandType enumerates the chat queries answered over WhatsApp.
type CommandType string

const (
	CommandStock    CommandType = "stock"
	CommandStore    CommandType = "store"
	CommandTop      CommandType = "top"
	CommandInsights CommandType = "insights"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

// Command is a parsed chat query.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

var commandAliases = map[string]CommandType{
	"stock":    CommandStock,
	"giacenze": CommandStock,
	"store":    CommandStore,
	"negozio":  CommandStore,
	"top":      CommandTop,
	"insights": CommandInsights,
	"consigli": CommandInsights,
	"help":     CommandHelp,
	"aiuto":    CommandHelp,
}

// ParseCommand reads the first word (an optional leading slash is ignored)
// and keeps the rest as arguments.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(message))
	if len(tokens) == 0 {
		return cmd
	}

	if t, ok := commandAliases[strings.TrimPrefix(tokens[0], "/")]; ok {
		cmd.Type = t
	}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
