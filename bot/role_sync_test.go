package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"cactuscoin/config"
	"cactuscoin/events"
	"cactuscoin/models"

	"github.com/stretchr/testify/assert"
)

var testTiers = []config.RoleTier{
	{RoleID: "broke", MinCoin: -1_000_000},
	{RoleID: "citizen", MinCoin: 0},
	{RoleID: "baron", MinCoin: 5_000},
	{RoleID: "tycoon", MinCoin: 50_000},
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		coin  int64
		want  string
		found bool
	}{
		{-2_000_000, "", false},
		{-5, "broke", true},
		{0, "citizen", true},
		{4_999, "citizen", true},
		{5_000, "baron", true},
		{1_000_000, "tycoon", true},
	}

	for _, tt := range tests {
		got, found := TierFor(testTiers, tt.coin)
		assert.Equal(t, tt.want, got, "coin %d", tt.coin)
		assert.Equal(t, tt.found, found, "coin %d", tt.coin)
	}
}

func TestRoleChanges(t *testing.T) {
	add, remove := roleChanges(testTiers, []string{"citizen", "moderator"}, "baron")
	assert.Equal(t, "baron", add)
	assert.Equal(t, []string{"citizen"}, remove)

	add, remove = roleChanges(testTiers, []string{"baron"}, "baron")
	assert.Empty(t, add)
	assert.Empty(t, remove)

	add, remove = roleChanges(testTiers, []string{"tycoon", "baron", "moderator"}, "")
	assert.Empty(t, add)
	assert.Equal(t, []string{"baron", "tycoon"}, remove)
}

type fakeBalances struct {
	mu       sync.Mutex
	balances map[int64]int64
}

func (f *fakeBalances) set(memberID, coin int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[memberID] = coin
}

func (f *fakeBalances) remove(memberID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.balances, memberID)
}

func (f *fakeBalances) GetBalance(ctx context.Context, memberID int64) (*models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	coin, ok := f.balances[memberID]
	if !ok {
		return nil, nil
	}
	return &models.Balance{MemberID: memberID, Coin: coin}, nil
}

type syncCall struct {
	coin       int64
	hasBalance bool
}

type recordingSync struct {
	mu    sync.Mutex
	calls []syncCall
}

func (r *recordingSync) apply(guildID, memberID, coin int64, hasBalance bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, syncCall{coin: coin, hasBalance: hasBalance})
	return nil
}

func (r *recordingSync) snapshot() []syncCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]syncCall(nil), r.calls...)
}

func newTestRoleSync(balances *fakeBalances) (*RoleSync, *recordingSync) {
	recorder := &recordingSync{}
	r := NewRoleSync(nil, "guild", testTiers, balances)
	r.apply = recorder.apply
	return r, recorder
}

func TestRoleSync_UsesCurrentBalanceForStaleEvents(t *testing.T) {
	balances := &fakeBalances{balances: map[int64]int64{42: 60_000}}
	roleSync, recorder := newTestRoleSync(balances)
	bus := events.NewBus()
	roleSync.Subscribe(bus)

	// both events carry outdated balances; the ledger already holds 60,000
	bus.Emit(context.Background(), events.BalanceChangeEvent{MemberID: 42, NewBalance: 100})
	bus.Emit(context.Background(), events.BalanceVerifiedEvent{MemberID: 42, Balance: 6_000})

	assert.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	for _, call := range recorder.snapshot() {
		assert.Equal(t, syncCall{coin: 60_000, hasBalance: true}, call)
	}
}

func TestRoleSync_ClearedMemberHasNoBalance(t *testing.T) {
	balances := &fakeBalances{balances: map[int64]int64{7: 500}}
	roleSync, recorder := newTestRoleSync(balances)

	balances.remove(7)
	roleSync.resync(context.Background(), 0, 7)

	balances.set(7, 5_000)
	roleSync.resync(context.Background(), 0, 7)

	assert.Equal(t, []syncCall{
		{coin: 0, hasBalance: false},
		{coin: 5_000, hasBalance: true},
	}, recorder.snapshot())
}
