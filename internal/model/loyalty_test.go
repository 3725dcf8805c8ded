package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierForPoints(t *testing.T) {
	assert.Equal(t, TierBronze, TierForPoints(0))
	assert.Equal(t, TierBronze, TierForPoints(499))
	assert.Equal(t, TierSilver, TierForPoints(500))
	assert.Equal(t, TierSilver, TierForPoints(1499))
	assert.Equal(t, TierGold, TierForPoints(1500))
	assert.Equal(t, TierGold, TierForPoints(2999))
	assert.Equal(t, TierPlatinum, TierForPoints(3000))
	assert.Equal(t, TierPlatinum, TierForPoints(100000))
}

func TestAwardPointsUsesPreAwardMultiplier(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	a.TotalPoints = 480
	a.AvailablePoints = 480

	// Still bronze at award time, so 1.0x applies even though the award
	// crosses the silver threshold.
	earned := a.AwardPoints(50, "order-1", time.Now())

	assert.Equal(t, 50, earned)
	assert.Equal(t, 530, a.TotalPoints)
	assert.Equal(t, 530, a.AvailablePoints)
	assert.Equal(t, TierSilver, a.Tier)

	// The next order earns at the silver rate.
	earned = a.AwardPoints(10, "order-2", time.Now())
	assert.Equal(t, 12, earned) // floor(10 * 1.25)
}

func TestAwardPointsFloorsFractions(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	a.Tier = TierSilver

	earned := a.AwardPoints(10.5, "order-1", time.Now())
	assert.Equal(t, 13, earned) // floor(10.5 * 1.25) = floor(13.125)
}

func TestAwardPointsTracksSpendAndHistory(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	now := time.Now()

	a.AwardPoints(20, "order-1", now)

	assert.Equal(t, 20.0, a.TotalSpent)
	assert.Equal(t, 1, a.OrderCount)
	assert.NotNil(t, a.LastOrderDate)
	assert.Len(t, a.PointsHistory, 1)
	assert.Equal(t, PointsEarned, a.PointsHistory[0].Type)
	assert.Equal(t, "order-1", a.PointsHistory[0].OrderID)
}

func TestRedeemPoints(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	a.TotalPoints = 1000
	a.AvailablePoints = 300

	discount, err := a.RedeemPoints(250, "order-1", time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 2.5, discount)
	assert.Equal(t, 50, a.AvailablePoints)
	assert.Equal(t, 1000, a.TotalPoints) // lifetime untouched
	assert.Len(t, a.RedemptionHistory, 1)
	assert.Len(t, a.PointsHistory, 1)
	assert.Equal(t, PointsRedeemed, a.PointsHistory[0].Type)
}

func TestRedeemPointsInsufficient(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	a.AvailablePoints = 100

	discount, err := a.RedeemPoints(101, "order-1", time.Now())

	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, 0.0, discount)
	assert.Equal(t, 100, a.AvailablePoints)
	assert.Empty(t, a.RedemptionHistory)
}

func TestAwardBirthdayBonusInsideWindow(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)

	a := NewLoyaltyAccount("u1")
	a.Birthday = &birthday

	granted := a.AwardBirthdayBonus(now)

	assert.Equal(t, BirthdayBonusPoints, granted)
	assert.Equal(t, BirthdayBonusPoints, a.AvailablePoints)
	assert.Equal(t, BirthdayBonusPoints, a.TotalPoints)
	assert.True(t, a.BirthdayBonusUsed)
}

func TestAwardBirthdayBonusOutsideWindow(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)

	a := NewLoyaltyAccount("u1")
	a.Birthday = &birthday

	assert.Equal(t, 0, a.AwardBirthdayBonus(now))
	assert.False(t, a.BirthdayBonusUsed)
}

func TestAwardBirthdayBonusOnlyOnce(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)

	a := NewLoyaltyAccount("u1")
	a.Birthday = &birthday

	assert.Equal(t, BirthdayBonusPoints, a.AwardBirthdayBonus(now))
	assert.Equal(t, 0, a.AwardBirthdayBonus(now))
	// Not even next year.
	assert.Equal(t, 0, a.AwardBirthdayBonus(now.AddDate(1, 0, 0)))
}

func TestAwardBirthdayBonusNoBirthday(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	assert.Equal(t, 0, a.AwardBirthdayBonus(time.Now()))
}

func TestTierBenefits(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	a.TotalPoints = 600
	a.CalculateTier()

	b := a.TierBenefits()

	assert.Equal(t, TierSilver, b.Tier)
	assert.Equal(t, 1.25, b.PointsPerDollar)
	assert.Equal(t, RedemptionRate, b.RedemptionRate)
	assert.NotNil(t, b.NextTier)
	assert.Equal(t, TierGold, *b.NextTier)
	assert.Equal(t, 900, b.PointsUntilNextTier)
}

func TestTierBenefitsAtTop(t *testing.T) {
	a := NewLoyaltyAccount("u1")
	a.TotalPoints = 5000
	a.CalculateTier()

	b := a.TierBenefits()

	assert.Nil(t, b.NextTier)
	assert.Equal(t, 0, b.PointsUntilNextTier)
}
