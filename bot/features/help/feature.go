package help

import (
	"context"

	"cactuscoin/bot/common"

	"github.com/bwmarrin/discordgo"
)

const (
	colorDarkGreen = 0x1F8B4C
	colorOrange    = 0xE67E22
)

// Feature answers !help, !adminhelp and !hello
type Feature struct {
	commands []common.CommandInfo
}

func New(commands []common.CommandInfo) *Feature {
	return &Feature{commands: commands}
}

func (f *Feature) HandleCommand(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	switch inv.CommandName {
	case "help":
		common.SendEmbed(s, inv, f.Embed(false))
	case "adminhelp":
		common.SendEmbed(s, inv, f.Embed(true))
	case "hello":
		common.Reply(s, inv, "Hello!")
	}
}

// Embed lists either the member or the admin commands
func (f *Feature) Embed(admin bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Cactus Coin Bot Commands",
		Color: colorDarkGreen,
	}
	if admin {
		embed.Title = "Cactus Coin Bot Admin Commands"
		embed.Color = colorOrange
	}

	for _, cmd := range f.commands {
		if cmd.Admin != admin || cmd.Usage == "" {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  common.CommandPrefix + cmd.Name,
			Value: cmd.Usage,
		})
	}
	return embed
}
