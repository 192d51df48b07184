// Package commands implements the Discord slash command handlers for
// yaudiocord's playback controls.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/yaudiocord/yaudiocord/internal/discord"
	"github.com/yaudiocord/yaudiocord/internal/player"
)

// resolveTimeout bounds a single /play request end to end: waiting for the
// resolution gate plus the yt-dlp invocation itself.
const resolveTimeout = 2 * time.Minute

// MusicCommands holds the dependencies for the playback slash commands.
type MusicCommands struct {
	players *player.Manager
}

// NewMusicCommands creates a MusicCommands and registers its handlers
// with the bot's router.
func NewMusicCommands(bot *discord.Bot, players *player.Manager) *MusicCommands {
	mc := &MusicCommands{players: players}
	mc.Register(bot.Router())
	return mc
}

// Register registers all playback commands with the router.
func (mc *MusicCommands) Register(router *discord.CommandRouter) {
	for _, def := range mc.Definitions() {
		router.RegisterCommand(def.Name, def, mc.handlerFor(def.Name))
	}
}

// Definitions returns the ApplicationCommand definitions for Discord.
func (mc *MusicCommands) Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Queue a track by URL or search query",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL or search terms",
					Required:    true,
				},
			},
		},
		{
			Name:        "join",
			Description: "Join your current voice channel",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "leave",
			Description: "Stop playback and leave the voice channel",
		},
		{
			Name:        "now",
			Description: "Show the track currently playing",
		},
		{
			Name:        "ping",
			Description: "Check bot responsiveness",
		},
	}
}

func (mc *MusicCommands) handlerFor(name string) discord.HandlerFunc {
	switch name {
	case "play":
		return mc.handlePlay
	case "join":
		return mc.handleJoin
	case "skip":
		return mc.handleSkip
	case "stop":
		return mc.handleStop
	case "leave":
		return mc.handleLeave
	case "now":
		return mc.handleNow
	case "ping":
		return mc.handlePing
	default:
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			discord.RespondEphemeral(s, i, "Unknown command.")
		}
	}
}

// handlePlay handles /play. Resolution can take several seconds, so the
// reply is deferred and delivered as a follow-up.
func (mc *MusicCommands) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := stringOption(i, "query")
	if query == "" {
		discord.RespondEphemeral(s, i, "Give me a URL or something to search for.")
		return
	}

	channelID := callerVoiceChannel(s, i)
	if channelID == "" {
		discord.RespondEphemeral(s, i, "Join a voice channel first.")
		return
	}

	discord.DeferReply(s, i)
	mc.players.Start(i.GuildID, channelID)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	t, err := mc.players.Enqueue(ctx, i.GuildID, query)
	if err != nil {
		discord.FollowUp(s, i, fmt.Sprintf("Could not queue %q: %v", query, err))
		return
	}
	discord.FollowUp(s, i, fmt.Sprintf("Queued **%s** %s", t.Title, formatDuration(t.Duration)))
}

// handleJoin handles /join.
func (mc *MusicCommands) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	channelID := callerVoiceChannel(s, i)
	if channelID == "" {
		discord.RespondEphemeral(s, i, "Join a voice channel first.")
		return
	}
	mc.players.Start(i.GuildID, channelID)
	discord.Respond(s, i, fmt.Sprintf("Joined <#%s>.", channelID))
}

// handleSkip handles /skip.
func (mc *MusicCommands) handleSkip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !mc.players.Skip(i.GuildID) {
		discord.RespondEphemeral(s, i, "Nothing is playing.")
		return
	}
	discord.Respond(s, i, "Skipped.")
}

// handleStop handles /stop. The bot stays in the voice channel.
func (mc *MusicCommands) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	mc.players.Stop(i.GuildID, false)
	discord.Respond(s, i, "Stopped playback and cleared the queue.")
}

// handleLeave handles /leave.
func (mc *MusicCommands) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	mc.players.Stop(i.GuildID, true)
	discord.Respond(s, i, "Left the voice channel.")
}

// handleNow handles /now.
func (mc *MusicCommands) handleNow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	t := mc.players.NowPlaying(i.GuildID)
	if t == nil {
		discord.RespondEphemeral(s, i, "Nothing is playing.")
		return
	}
	discord.RespondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Now playing",
		Description: fmt.Sprintf("**%s** %s", t.Title, formatDuration(t.Duration)),
		URL:         t.WebURL,
	})
}

// handlePing handles /ping.
func (mc *MusicCommands) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discord.Respond(s, i, fmt.Sprintf("Pong! Gateway latency %s.", s.HeartbeatLatency().Truncate(time.Millisecond)))
}

// callerVoiceChannel returns the voice channel the invoking user currently
// occupies, or "" if they are not in one.
func callerVoiceChannel(s *discordgo.Session, i *discordgo.InteractionCreate) string {
	userID := interactionUserID(i)
	if userID == "" {
		return ""
	}
	vs, err := s.State.VoiceState(i.GuildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// interactionUserID extracts the invoking user's ID from an interaction.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// stringOption returns the named string option of an application command
// interaction, or "".
func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// formatDuration renders a track duration as "(m:ss)", or "" for unknown
// durations such as live streams.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "(live)"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("(%d:%02d:%02d)", h, m, s)
	}
	return fmt.Sprintf("(%d:%02d)", m, s)
}
