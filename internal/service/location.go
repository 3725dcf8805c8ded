package service

import (
	"context"
	"fmt"
	"time"

	"yurt/internal/model"
)

type LocationService struct {
	locations LocationStore
}

func NewLocationService(locations LocationStore) *LocationService {
	return &LocationService{locations: locations}
}

// AvailabilityReport is the public availability answer for a location:
// the open/closed verdict, today's scheduled hours, and when a closed
// location next opens.
type AvailabilityReport struct {
	LocationID    string             `json:"locationId"`
	Name          string             `json:"name"`
	IsOpen        bool               `json:"isOpen"`
	OpenTime      string             `json:"openTime,omitempty"`
	CloseTime     string             `json:"closeTime,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	Hours         *model.DayHours    `json:"hours,omitempty"`
	NextAvailable *model.NextOpening `json:"nextAvailable,omitempty"`
}

func (s *LocationService) Availability(ctx context.Context, locationID string) (*AvailabilityReport, error) {
	location, err := s.locations.GetLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}

	now := time.Now()
	availability := location.AvailabilityAt(now)

	report := &AvailabilityReport{
		LocationID: location.ID,
		Name:       location.Name,
		IsOpen:     availability.Open,
		OpenTime:   availability.OpenTime,
		CloseTime:  availability.CloseTime,
		Reason:     availability.Reason,
	}

	if hours, closed := location.HoursOn(now); !closed {
		report.Hours = &hours
	}
	if !availability.Open {
		report.NextAvailable = location.NextAvailable(now)
	}
	return report, nil
}
