// Package commands assembles the static command list the bot registers at
// startup.
package commands

import (
	"portiere/internal/command"
	"portiere/internal/commands/admin"
	"portiere/internal/commands/core"
	"portiere/internal/commands/requests"
)

// All returns every command the bot ships, in registration order.
func All() []command.Command {
	return []command.Command{
		&core.Ping{},
		&core.Whois{},
		&core.ServerInfo{},
		&admin.Talk{},
		&admin.Shutdown{},
		&admin.Deploy{},
		&admin.Admin{},
		&requests.Appeal{},
		&requests.Report{},
		&requests.Citizenship{},
		&requests.Review{},
	}
}
