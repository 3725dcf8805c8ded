package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// tierOrder is lowest to highest; thresholds are lifetime points.
var tierOrder = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum}

var TierThresholds = map[Tier]int{
	TierBronze:   0,
	TierSilver:   500,
	TierGold:     1500,
	TierPlatinum: 3000,
}

// TierMultipliers is points earned per currency unit spent.
var TierMultipliers = map[Tier]float64{
	TierBronze:   1.0,
	TierSilver:   1.25,
	TierGold:     1.5,
	TierPlatinum: 2.0,
}

// RedemptionRate: 100 points buy one currency unit of discount.
const RedemptionRate = 100

const (
	BirthdayBonusPoints = 100
	birthdayWindowDays  = 7
)

var ErrInsufficientPoints = errors.New("insufficient points to redeem")

type PointEventType string

const (
	PointsEarned   PointEventType = "earned"
	PointsRedeemed PointEventType = "redeemed"
	PointsBonus    PointEventType = "bonus"
	PointsExpired  PointEventType = "expired"
	PointsRefunded PointEventType = "refunded"
)

type PointEvent struct {
	Type        PointEventType `json:"type"`
	Points      int            `json:"points"`
	OrderID     string         `json:"orderId,omitempty"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type Redemption struct {
	Points     int       `json:"points"`
	Discount   float64   `json:"discount"`
	OrderID    string    `json:"orderId"`
	RedeemedAt time.Time `json:"redeemedAt"`
}

type LoyaltyAccount struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId"`
	TotalPoints       int          `json:"totalPoints"`
	AvailablePoints   int          `json:"availablePoints"`
	Tier              Tier         `json:"tier"`
	TotalSpent        float64      `json:"totalSpent"`
	OrderCount        int          `json:"orderCount"`
	LastOrderDate     *time.Time   `json:"lastOrderDate,omitempty"`
	Birthday          *time.Time   `json:"birthday,omitempty"`
	BirthdayBonusUsed bool         `json:"birthdayBonusUsed"`
	RedemptionHistory []Redemption `json:"redemptionHistory"`
	PointsHistory     []PointEvent `json:"pointsHistory"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

func NewLoyaltyAccount(userID string) *LoyaltyAccount {
	return &LoyaltyAccount{
		UserID: userID,
		Tier:   TierBronze,
	}
}

// TierForPoints returns the highest tier whose threshold is <= points.
func TierForPoints(points int) Tier {
	tier := TierBronze
	for _, t := range tierOrder {
		if points >= TierThresholds[t] {
			tier = t
		}
	}
	return tier
}

// CalculateTier recomputes the tier from lifetime points and stores it.
func (a *LoyaltyAccount) CalculateTier() Tier {
	a.Tier = TierForPoints(a.TotalPoints)
	return a.Tier
}

// AwardPoints credits points for a spent amount. The multiplier is the
// tier in effect before the award, so a tier reached by this order only
// pays off starting with the next one.
func (a *LoyaltyAccount) AwardPoints(amount float64, orderID string, now time.Time) int {
	multiplier, ok := TierMultipliers[a.Tier]
	if !ok {
		multiplier = 1.0
	}
	pointsEarned := int(math.Floor(amount * multiplier))

	a.TotalPoints += pointsEarned
	a.AvailablePoints += pointsEarned
	a.TotalSpent += amount
	a.OrderCount++
	a.LastOrderDate = &now

	a.PointsHistory = append(a.PointsHistory, PointEvent{
		Type:        PointsEarned,
		Points:      pointsEarned,
		OrderID:     orderID,
		Description: fmt.Sprintf("Earned %d points from order ($%g)", pointsEarned, amount),
		CreatedAt:   now,
	})

	a.CalculateTier()
	return pointsEarned
}

// RedeemPoints converts available points into a discount. Lifetime points
// are untouched; only the spendable balance goes down.
func (a *LoyaltyAccount) RedeemPoints(points int, orderID string, now time.Time) (float64, error) {
	if points > a.AvailablePoints {
		return 0, ErrInsufficientPoints
	}

	discount := float64(points) / RedemptionRate
	a.AvailablePoints -= points

	a.RedemptionHistory = append(a.RedemptionHistory, Redemption{
		Points:     points,
		Discount:   discount,
		OrderID:    orderID,
		RedeemedAt: now,
	})
	a.PointsHistory = append(a.PointsHistory, PointEvent{
		Type:        PointsRedeemed,
		Points:      points,
		OrderID:     orderID,
		Description: fmt.Sprintf("Redeemed %d points for $%.2f discount", points, discount),
		CreatedAt:   now,
	})

	return discount, nil
}

// AwardBirthdayBonus grants the fixed bonus when now is within 7 days of
// this year's birthday and the bonus was never used. The used flag is
// never reset, so the bonus is once per account, not once per year.
func (a *LoyaltyAccount) AwardBirthdayBonus(now time.Time) int {
	if a.Birthday == nil {
		return 0
	}

	birthdayThisYear := time.Date(now.Year(), a.Birthday.Month(), a.Birthday.Day(), 0, 0, 0, 0, now.Location())
	days := int(math.Abs(math.Ceil(birthdayThisYear.Sub(now).Hours() / 24)))

	if days > birthdayWindowDays || a.BirthdayBonusUsed {
		return 0
	}

	a.AvailablePoints += BirthdayBonusPoints
	a.TotalPoints += BirthdayBonusPoints
	a.BirthdayBonusUsed = true
	a.PointsHistory = append(a.PointsHistory, PointEvent{
		Type:        PointsBonus,
		Points:      BirthdayBonusPoints,
		Description: "Birthday bonus",
		CreatedAt:   now,
	})

	return BirthdayBonusPoints
}

type TierBenefits struct {
	Tier                Tier    `json:"tier"`
	PointsPerDollar     float64 `json:"pointsPerDollar"`
	RedemptionRate      int     `json:"redemptionRate"`
	NextTier            *Tier   `json:"nextTier"`
	PointsUntilNextTier int     `json:"pointsUntilNextTier"`
}

func (a *LoyaltyAccount) NextTier() (Tier, bool) {
	for i, t := range tierOrder {
		if t == a.Tier && i < len(tierOrder)-1 {
			return tierOrder[i+1], true
		}
	}
	return "", false
}

func (a *LoyaltyAccount) PointsUntilNextTier() int {
	next, ok := a.NextTier()
	if !ok {
		return 0
	}
	if d := TierThresholds[next] - a.TotalPoints; d > 0 {
		return d
	}
	return 0
}

func (a *LoyaltyAccount) TierBenefits() TierBenefits {
	b := TierBenefits{
		Tier:                a.Tier,
		PointsPerDollar:     TierMultipliers[a.Tier],
		RedemptionRate:      RedemptionRate,
		PointsUntilNextTier: a.PointsUntilNextTier(),
	}
	if next, ok := a.NextTier(); ok {
		b.NextTier = &next
	}
	return b
}
