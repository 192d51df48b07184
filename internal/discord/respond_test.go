package discord_test

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/yaudiocord/yaudiocord/internal/discord"
	"github.com/yaudiocord/yaudiocord/internal/discord/mock"
)

func testInteraction() *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ID: "inter-1"}}
}

func TestRespond_Public(t *testing.T) {
	t.Parallel()

	m := &mock.InteractionResponder{}
	discord.Respond(m, testInteraction(), "Skipped.")

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("no response recorded")
	}
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("type = %v", resp.Type)
	}
	if resp.Data.Content != "Skipped." {
		t.Errorf("content = %q", resp.Data.Content)
	}
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0 {
		t.Error("public response must not be ephemeral")
	}
}

func TestRespondEphemeral_SetsFlag(t *testing.T) {
	t.Parallel()

	m := &mock.InteractionResponder{}
	discord.RespondEphemeral(m, testInteraction(), "Nothing is playing.")

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("no response recorded")
	}
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("ephemeral flag not set")
	}
}

func TestRespondError_FormatsError(t *testing.T) {
	t.Parallel()

	m := &mock.InteractionResponder{}
	discord.RespondError(m, testInteraction(), errors.New("no stream URL"))

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("no response recorded")
	}
	if resp.Data.Content != "Error: no stream URL" {
		t.Errorf("content = %q", resp.Data.Content)
	}
}

func TestDeferReply_ThenFollowUp(t *testing.T) {
	t.Parallel()

	m := &mock.InteractionResponder{}
	i := testInteraction()

	discord.DeferReply(m, i)
	discord.FollowUp(m, i, "Queued **Song** (3:33)")

	resp := m.LastResponse()
	if resp == nil || resp.Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
		t.Fatalf("defer response = %+v", resp)
	}
	fu := m.LastFollowUp()
	if fu == nil || fu.Content != "Queued **Song** (3:33)" {
		t.Fatalf("follow-up = %+v", fu)
	}
}

func TestRespondEmbed(t *testing.T) {
	t.Parallel()

	m := &mock.InteractionResponder{}
	discord.RespondEmbed(m, testInteraction(), &discordgo.MessageEmbed{Title: "Now playing"})

	resp := m.LastResponse()
	if resp == nil {
		t.Fatal("no response recorded")
	}
	if len(resp.Data.Embeds) != 1 || resp.Data.Embeds[0].Title != "Now playing" {
		t.Errorf("embeds = %+v", resp.Data.Embeds)
	}
}

func TestRespond_ErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	m := &mock.InteractionResponder{Err: errors.New("interaction expired")}
	// Must not panic; the error is logged, not returned.
	discord.Respond(m, testInteraction(), "late")
	if len(m.Responses) != 1 {
		t.Errorf("responses = %d, want 1", len(m.Responses))
	}
}
