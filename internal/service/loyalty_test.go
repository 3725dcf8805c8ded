package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yurt/internal/model"
	"yurt/internal/storage"
)

type stubLoyaltyStore struct {
	accounts map[string]*model.LoyaltyAccount
	created  int
	saved    int
}

func newStubLoyaltyStore() *stubLoyaltyStore {
	return &stubLoyaltyStore{accounts: map[string]*model.LoyaltyAccount{}}
}

func (s *stubLoyaltyStore) GetLoyaltyByUser(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	a, ok := s.accounts[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return a, nil
}

func (s *stubLoyaltyStore) CreateLoyaltyAccount(ctx context.Context, a *model.LoyaltyAccount) error {
	s.created++
	s.accounts[a.UserID] = a
	return nil
}

func (s *stubLoyaltyStore) SaveLoyaltyAccount(ctx context.Context, a *model.LoyaltyAccount) error {
	s.saved++
	s.accounts[a.UserID] = a
	return nil
}

func TestStatusCreatesAccountLazily(t *testing.T) {
	store := newStubLoyaltyStore()
	svc := NewLoyaltyService(store)

	account, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", account.UserID)
	assert.Equal(t, model.TierBronze, account.Tier)
	assert.Equal(t, 1, store.created)

	// Second call reuses the stored account.
	_, err = svc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.created)
}

func TestAwardForOrderPersists(t *testing.T) {
	store := newStubLoyaltyStore()
	svc := NewLoyaltyService(store)

	earned, account, err := svc.AwardForOrder(context.Background(), "u1", "o1", 42)

	require.NoError(t, err)
	assert.Equal(t, 42, earned)
	assert.Equal(t, 42, account.AvailablePoints)
	assert.Equal(t, 1, store.saved)
	assert.Equal(t, 42, store.accounts["u1"].TotalPoints)
}

func TestRedeemInsufficientReturnsAccount(t *testing.T) {
	store := newStubLoyaltyStore()
	store.accounts["u1"] = &model.LoyaltyAccount{UserID: "u1", AvailablePoints: 30, Tier: model.TierBronze}
	svc := NewLoyaltyService(store)

	_, account, err := svc.Redeem(context.Background(), "u1", "o1", 100)

	assert.ErrorIs(t, err, model.ErrInsufficientPoints)
	require.NotNil(t, account)
	assert.Equal(t, 30, account.AvailablePoints)
	assert.Equal(t, 0, store.saved)
}

func TestRedeemPersists(t *testing.T) {
	store := newStubLoyaltyStore()
	store.accounts["u1"] = &model.LoyaltyAccount{UserID: "u1", AvailablePoints: 300, TotalPoints: 300, Tier: model.TierBronze}
	svc := NewLoyaltyService(store)

	discount, account, err := svc.Redeem(context.Background(), "u1", "o1", 250)

	require.NoError(t, err)
	assert.Equal(t, 2.5, discount)
	assert.Equal(t, 50, account.AvailablePoints)
	assert.Equal(t, 1, store.saved)
}

func TestRedeemUnknownAccount(t *testing.T) {
	svc := NewLoyaltyService(newStubLoyaltyStore())

	_, _, err := svc.Redeem(context.Background(), "u1", "o1", 10)

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBirthdayBonusNoOpWithoutBirthday(t *testing.T) {
	store := newStubLoyaltyStore()
	svc := NewLoyaltyService(store)

	granted, account, err := svc.BirthdayBonus(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 0, granted)
	assert.NotNil(t, account)
	// No save when nothing changed.
	assert.Equal(t, 0, store.saved)
}
