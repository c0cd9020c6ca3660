package core

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portiere/internal/command"
)

// recordingTransport captures outbound REST calls and answers them all with
// an empty success, so command handlers can run against a real session
// without a network.
type recordingTransport struct {
	bodies []string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	rt.bodies = append(rt.bodies, body)
	return &http.Response{
		StatusCode: http.StatusNoContent,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     make(http.Header),
	}, nil
}

func recordedSession(t *testing.T) (*discordgo.Session, *recordingTransport) {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	rt := &recordingTransport{}
	s.Client = &http.Client{Transport: rt}
	return s, rt
}

func TestServerInfoRefusesDirectMessages(t *testing.T) {
	s, rt := recordedSession(t)

	ctx := &command.Context{
		Context: context.Background(),
		Session: s,
		Event: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			ID:    "1",
			Token: "tok",
			Type:  discordgo.InteractionApplicationCommand,
			// No GuildID: the interaction came from a DM.
			User: &discordgo.User{ID: "42", Username: "ada"},
			Data: discordgo.ApplicationCommandInteractionData{Name: "serverinfo"},
		}},
	}

	require.NoError(t, (&ServerInfo{}).Run(ctx))

	require.Len(t, rt.bodies, 1)
	assert.Contains(t, rt.bodies[0], "only works inside a server")
	// Flag 64 marks the reply ephemeral.
	assert.Contains(t, rt.bodies[0], `"flags":64`)
}
