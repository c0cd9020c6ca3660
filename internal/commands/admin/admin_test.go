package admin

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portiere/internal/perms"
)

func TestAdminCommandShape(t *testing.T) {
	c := &Admin{}
	assert.Equal(t, perms.LevelOwnerOnly, c.RequiredLevel())

	def := c.Definition()
	require.Len(t, def.Options, 2)

	var names []string
	for _, sub := range def.Options {
		assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, sub.Type)
		names = append(names, sub.Name)
		require.Len(t, sub.Options, 1)
		assert.Equal(t, "user", sub.Options[0].Name)
		assert.True(t, sub.Options[0].Required)
	}
	assert.Equal(t, []string{"grant", "revoke"}, names)
}
