package wagers

import (
	"context"
	"errors"

	"cactuscoin/bot/common"
	"cactuscoin/models"
	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBet(ctx context.Context, s *discordgo.Session, inv common.Invocation) {
	parts := common.FieldsN(inv.RawArgs, 3)
	counterpartyID, mentioned := inv.FirstMention()
	if !mentioned || len(parts) != 3 {
		common.Reply(s, inv, usageMessage)
		return
	}
	amount, ok := common.ParseAmount(parts[1])
	if !ok {
		common.Reply(s, inv, usageMessage)
		return
	}

	switch {
	case counterpartyID == inv.InvokerID:
		common.Reply(s, inv, selfWagerReply)
		return
	case amount < 0:
		common.Reply(s, inv, negativeReply)
		return
	}

	handle, err := f.wagers.ProposeWager(ctx, inv.GuildID, inv.InvokerID, counterpartyID, amount, parts[2])
	if err != nil {
		common.ReplyWithError(s, inv, err)
		return
	}

	prompt, err := s.ChannelMessageSendComplex(inv.ChannelID, &discordgo.MessageSend{
		Content:    confirmationPrompt(counterpartyID),
		Components: BuildConfirmationComponents(handle.ID()),
	})
	if err != nil {
		// the machine will time out on its own with no ledger effect
		log.WithFields(log.Fields{
			"wagerID": handle.ID(),
			"error":   err,
		}).Error("Failed to send wager prompt")
		return
	}

	go f.track(ctx, s, handle, prompt)
}

// track mirrors the wager's progress into its prompt message until it terminates
func (f *Feature) track(ctx context.Context, s *discordgo.Session, handle *service.WagerHandle, prompt *discordgo.Message) {
	wager := handle.Snapshot()
	counterpartyName := common.GetDisplayNameInt64(s, wager.GuildID, wager.CounterpartyID)

	confirmed, err := handle.AwaitConfirmation(ctx)
	if err != nil {
		logTrackingStopped(wager.ID, err)
		return
	}

	if !confirmed {
		if handle.State() == models.WagerStateDeclined {
			editPrompt(s, prompt, declinedMessage(counterpartyName), nil)
			return
		}
		if err := s.ChannelMessageDelete(prompt.ChannelID, prompt.ID); err != nil {
			log.WithFields(log.Fields{
				"wagerID": wager.ID,
				"error":   err,
			}).Warn("Failed to delete expired wager prompt")
		}
		return
	}

	proposerName := common.GetDisplayNameInt64(s, wager.GuildID, wager.ProposerID)
	editPrompt(s, prompt, acceptedMessage(counterpartyName),
		BuildWinnerComponents(wager.ID, wager.ProposerID, proposerName, wager.CounterpartyID, counterpartyName))

	outcome, err := handle.AwaitOutcome(ctx)
	if err != nil {
		logTrackingStopped(wager.ID, err)
		return
	}

	if !outcome.Settled {
		editPrompt(s, prompt, unresolvedReply, nil)
		return
	}

	winnerName, loserName := proposerName, counterpartyName
	if outcome.WinnerID == wager.CounterpartyID {
		winnerName, loserName = counterpartyName, proposerName
	}
	editPrompt(s, prompt, settledMessage(winnerName, loserName, outcome.Amount, wager.Reason), nil)
}

func (f *Feature) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id, ok := parseComponentID(i.MessageComponentData().CustomID)
	if !ok {
		log.Warnf("Unrecognised wager component: %s", i.MessageComponentData().CustomID)
		return
	}

	handle := f.wagers.GetWager(id.WagerID)
	if handle == nil {
		common.RespondEphemeral(s, i, "This bet is no longer active.")
		return
	}

	actorID := common.InteractionUserID(i)
	switch id.Action {
	case actionAccept, actionDecline:
		if !handle.Respond(actorID, id.Action == actionAccept) {
			common.RespondEphemeral(s, i, "Only the challenged member can answer this bet.")
			return
		}
	case actionWinner:
		if !handle.PickWinner(actorID, id.WinnerID) {
			common.RespondEphemeral(s, i, "Only the two members in this bet can pick the winner.")
			return
		}
	}

	common.AcknowledgeComponent(s, i)
}

// editPrompt replaces the prompt's text; nil components removes the buttons
func editPrompt(s *discordgo.Session, prompt *discordgo.Message, content string, components []discordgo.MessageComponent) {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         prompt.ID,
		Channel:    prompt.ChannelID,
		Content:    &content,
		Components: &components,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"messageID": prompt.ID,
			"error":     err,
		}).Error("Failed to edit wager prompt")
	}
}

func logTrackingStopped(wagerID string, err error) {
	entry := log.WithFields(log.Fields{
		"wagerID": wagerID,
		"error":   err,
	})
	if errors.Is(err, context.Canceled) {
		entry.Debug("Stopped tracking wager on shutdown")
		return
	}
	entry.Warn("Stopped tracking wager")
}
