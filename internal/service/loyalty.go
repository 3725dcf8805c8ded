package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yurt/internal/model"
	"yurt/internal/storage"
)

// LoyaltyStore loads and saves whole accounts. Mutation is
// read-modify-write without an optimistic concurrency check; concurrent
// award/redeem calls for one customer can race and lose an update.
type LoyaltyStore interface {
	GetLoyaltyByUser(ctx context.Context, userID string) (*model.LoyaltyAccount, error)
	CreateLoyaltyAccount(ctx context.Context, a *model.LoyaltyAccount) error
	SaveLoyaltyAccount(ctx context.Context, a *model.LoyaltyAccount) error
}

type LoyaltyService struct {
	accounts LoyaltyStore
}

func NewLoyaltyService(accounts LoyaltyStore) *LoyaltyService {
	return &LoyaltyService{accounts: accounts}
}

// Status returns the customer's account, creating an empty bronze one
// on first contact.
func (s *LoyaltyService) Status(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	return s.getOrCreate(ctx, userID)
}

// AwardForOrder credits points for a spent amount through the single
// accrual path. Both order creation and the award endpoint land here.
func (s *LoyaltyService) AwardForOrder(ctx context.Context, userID, orderID string, amount float64) (int, *model.LoyaltyAccount, error) {
	account, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	earned := account.AwardPoints(amount, orderID, time.Now())

	if err := s.accounts.SaveLoyaltyAccount(ctx, account); err != nil {
		return 0, nil, fmt.Errorf("save loyalty account: %w", err)
	}
	return earned, account, nil
}

// Redeem converts available points into a discount. On an
// insufficient-balance failure the account is returned unchanged so the
// caller can report the spendable balance.
func (s *LoyaltyService) Redeem(ctx context.Context, userID, orderID string, points int) (float64, *model.LoyaltyAccount, error) {
	account, err := s.accounts.GetLoyaltyByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("load loyalty account: %w", err)
	}

	discount, err := account.RedeemPoints(points, orderID, time.Now())
	if err != nil {
		return 0, account, err
	}

	if err := s.accounts.SaveLoyaltyAccount(ctx, account); err != nil {
		return 0, nil, fmt.Errorf("save loyalty account: %w", err)
	}
	return discount, account, nil
}

// BirthdayBonus applies the birthday rules; zero points means outside
// the window or already used.
func (s *LoyaltyService) BirthdayBonus(ctx context.Context, userID string) (int, *model.LoyaltyAccount, error) {
	account, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	granted := account.AwardBirthdayBonus(time.Now())
	if granted == 0 {
		return 0, account, nil
	}

	if err := s.accounts.SaveLoyaltyAccount(ctx, account); err != nil {
		return 0, nil, fmt.Errorf("save loyalty account: %w", err)
	}
	return granted, account, nil
}

func (s *LoyaltyService) getOrCreate(ctx context.Context, userID string) (*model.LoyaltyAccount, error) {
	account, err := s.accounts.GetLoyaltyByUser(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load loyalty account: %w", err)
	}

	account = model.NewLoyaltyAccount(userID)
	if err := s.accounts.CreateLoyaltyAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create loyalty account: %w", err)
	}
	return account, nil
}
