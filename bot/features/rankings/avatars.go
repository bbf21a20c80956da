package rankings

import (
	"image"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// avatar downloads and caches a user's avatar keyed by its hash. A failed
// download yields nil and the bar is drawn without an icon.
func (f *Feature) avatar(s *discordgo.Session, user *discordgo.User) image.Image {
	key := user.ID + ":" + user.Avatar

	f.avatarsMu.Lock()
	cached, ok := f.avatars[key]
	f.avatarsMu.Unlock()
	if ok {
		return cached
	}

	img, err := s.UserAvatarDecode(user)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": user.ID,
			"error":  err,
		}).Warn("Failed to download avatar")
		return nil
	}

	f.avatarsMu.Lock()
	f.avatars[key] = img
	f.avatarsMu.Unlock()
	return img
}
