package bot

import (
	"context"
	"fmt"
	"sync"

	"cactuscoin/bot/common"
	"cactuscoin/config"
	"cactuscoin/events"
	"cactuscoin/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BalanceReader reads the committed balance of a member
type BalanceReader interface {
	GetBalance(ctx context.Context, memberID int64) (*models.Balance, error)
}

// RoleSync keeps each member's tier role in line with their balance. Failures
// are logged and never affect the ledger.
type RoleSync struct {
	session  *discordgo.Session
	guildID  string
	tiers    []config.RoleTier
	balances BalanceReader

	// apply is Sync, swapped out in tests
	apply func(guildID, memberID, coin int64, hasBalance bool) error

	// bus handlers run concurrently; syncs for one member must not interleave
	memberLocks sync.Map
}

// NewRoleSync creates a role sync; tiers must be ordered by ascending MinCoin
func NewRoleSync(session *discordgo.Session, guildID string, tiers []config.RoleTier, balances BalanceReader) *RoleSync {
	r := &RoleSync{
		session:  session,
		guildID:  guildID,
		tiers:    tiers,
		balances: balances,
	}
	r.apply = r.Sync
	return r
}

// Subscribe wires the sync to balance events. Events only say which member
// changed; the balance is re-read so that out of order delivery cannot leave
// a stale role behind.
func (r *RoleSync) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			r.resync(ctx, e.GuildID, e.MemberID)
		}
	})
	bus.Subscribe(events.EventTypeBalanceVerified, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceVerifiedEvent); ok {
			r.resync(ctx, e.GuildID, e.MemberID)
		}
	})
	bus.Subscribe(events.EventTypeBalanceCleared, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceClearedEvent); ok {
			r.resync(ctx, e.GuildID, e.MemberID)
		}
	})
}

func (r *RoleSync) memberLock(memberID int64) *sync.Mutex {
	lock, _ := r.memberLocks.LoadOrStore(memberID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// resync applies the tier for the member's current balance
func (r *RoleSync) resync(ctx context.Context, guildID, memberID int64) {
	lock := r.memberLock(memberID)
	lock.Lock()
	defer lock.Unlock()

	fields := log.Fields{"memberID": memberID}

	balance, err := r.balances.GetBalance(ctx, memberID)
	if err != nil {
		fields["error"] = err
		log.WithFields(fields).Warn("Failed to read balance for tier role")
		return
	}

	var coin int64
	if balance != nil {
		coin = balance.Coin
	}
	if err := r.apply(guildID, memberID, coin, balance != nil); err != nil {
		fields["coin"] = coin
		fields["error"] = err
		log.WithFields(fields).Warn("Failed to sync tier role")
	}
}

// Sync grants the member the role for coin and removes every other tier role.
// A member without a balance holds no tier role.
func (r *RoleSync) Sync(guildID, memberID, coin int64, hasBalance bool) error {
	guild := r.guildID
	if guildID != 0 {
		guild = common.Snowflake(guildID)
	}
	if guild == "" {
		return fmt.Errorf("no guild for member %d", memberID)
	}
	userID := common.Snowflake(memberID)

	member, err := common.GetMember(r.session, guild, userID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}

	target := ""
	if hasBalance {
		target, _ = TierFor(r.tiers, coin)
	}
	add, remove := roleChanges(r.tiers, member.Roles, target)

	for _, roleID := range remove {
		if err := r.session.GuildMemberRoleRemove(guild, userID, roleID); err != nil {
			return fmt.Errorf("failed to remove role %s: %w", roleID, err)
		}
	}
	if add != "" {
		if err := r.session.GuildMemberRoleAdd(guild, userID, add); err != nil {
			return fmt.Errorf("failed to add role %s: %w", add, err)
		}
		log.WithFields(log.Fields{
			"memberID": memberID,
			"roleID":   add,
			"coin":     coin,
		}).Info("Updated tier role")
	}

	return nil
}

// TierFor returns the role of the highest tier whose MinCoin is at most coin
func TierFor(tiers []config.RoleTier, coin int64) (string, bool) {
	roleID, found := "", false
	for _, tier := range tiers {
		if coin >= tier.MinCoin {
			roleID, found = tier.RoleID, true
		}
	}
	return roleID, found
}

// roleChanges computes which tier role to add and which to remove given the
// member's current roles. Roles outside the tier table are left alone.
func roleChanges(tiers []config.RoleTier, current []string, target string) (string, []string) {
	held := make(map[string]bool, len(current))
	for _, roleID := range current {
		held[roleID] = true
	}

	var remove []string
	for _, tier := range tiers {
		if tier.RoleID != target && held[tier.RoleID] {
			remove = append(remove, tier.RoleID)
		}
	}

	add := ""
	if target != "" && !held[target] {
		add = target
	}
	return add, remove
}
