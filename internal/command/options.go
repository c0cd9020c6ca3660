package command

import "github.com/bwmarrin/discordgo"

// Option accessors for interaction data. discordgo hands options back as a
// flat slice; these helpers look values up by name with zero values for
// absent optional parameters.

type optionList []*discordgo.ApplicationCommandInteractionDataOption

func options(i *discordgo.InteractionCreate) optionList {
	data := i.ApplicationCommandData()
	opts := data.Options
	// Descend into a subcommand so leaf options resolve by name directly.
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		opts = opts[0].Options
	}
	return opts
}

func (l optionList) find(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range l {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// Subcommand returns the invoked subcommand name, if any.
func Subcommand(i *discordgo.InteractionCreate) string {
	data := i.ApplicationCommandData()
	if len(data.Options) == 1 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return data.Options[0].Name
	}
	return ""
}

// StringOption returns a string option value or "".
func StringOption(i *discordgo.InteractionCreate, name string) string {
	if opt := options(i).find(name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

// IntOption returns an integer option value or 0.
func IntOption(i *discordgo.InteractionCreate, name string) int64 {
	if opt := options(i).find(name); opt != nil {
		return opt.IntValue()
	}
	return 0
}

// BoolOption returns a boolean option value or false.
func BoolOption(i *discordgo.InteractionCreate, name string) bool {
	if opt := options(i).find(name); opt != nil {
		return opt.BoolValue()
	}
	return false
}

// UserOption returns the selected user or nil.
func UserOption(i *discordgo.InteractionCreate, s *discordgo.Session, name string) *discordgo.User {
	if opt := options(i).find(name); opt != nil {
		return opt.UserValue(s)
	}
	return nil
}

// ChannelOption returns the selected channel id or "".
func ChannelOption(i *discordgo.InteractionCreate, name string) string {
	if opt := options(i).find(name); opt != nil {
		if ch := opt.ChannelValue(nil); ch != nil {
			return ch.ID
		}
	}
	return ""
}
