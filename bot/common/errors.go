package common

import (
	"errors"

	"cactuscoin/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GenericFailure is shown for storage and other unexpected errors
const GenericFailure = "Something went wrong. Try again later."

// ReplyWithError reports err to the invoker. Validation errors are shown as
// is; anything else is logged and replaced with GenericFailure.
func ReplyWithError(s *discordgo.Session, inv Invocation, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		Reply(s, inv, validationErr.Message)
		return
	}

	log.WithFields(log.Fields{
		"command":   inv.CommandName,
		"invokerID": inv.InvokerID,
		"error":     err,
	}).Error("Command failed")
	Reply(s, inv, GenericFailure)
}
