package model

import "time"

type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WeeklyHours is keyed by lowercase weekday name ("monday".."sunday").
type WeeklyHours map[string]DayHours

// Holiday overrides the weekly schedule for one calendar date, either as
// a full closure or with custom hours.
type Holiday struct {
	Date        string    `json:"date"` // YYYY-MM-DD
	Name        string    `json:"name,omitempty"`
	IsClosed    bool      `json:"isClosed"`
	CustomHours *DayHours `json:"customHours,omitempty"`
}

type Location struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	ZipCode      string      `json:"zipCode"`
	Phone        string      `json:"phone,omitempty"`
	WorkingHours WeeklyHours `json:"workingHours"`
	Holidays     []Holiday   `json:"holidays"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type Availability struct {
	Open      bool   `json:"isOpen"`
	OpenTime  string `json:"openTime,omitempty"`
	CloseTime string `json:"closeTime,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type NextOpening struct {
	Time string    `json:"time"`
	Date time.Time `json:"date"`
	Day  string    `json:"day"`
}

var weekdayKeys = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// weekdayKey maps a time to its Monday-first weekday name; Go's Sunday=0
// gets remapped to the end of the week.
func weekdayKey(t time.Time) string {
	return weekdayKeys[(int(t.Weekday())+6)%7]
}

// formatClock is zero-padded HH:MM; padding is what makes plain string
// comparison against schedule times valid.
func formatClock(t time.Time) string {
	return t.Format("15:04")
}

func (l *Location) holidayOn(date time.Time) *Holiday {
	key := date.Format("2006-01-02")
	for i := range l.Holidays {
		if l.Holidays[i].Date == key {
			return &l.Holidays[i]
		}
	}
	return nil
}

// AvailabilityAt decides whether the location accepts orders at now:
// active flag first, then an exact-date holiday override, then the
// weekly schedule for the (Monday-first) weekday.
func (l *Location) AvailabilityAt(now time.Time) Availability {
	if !l.IsActive {
		return Availability{Reason: "Location is currently inactive"}
	}

	if holiday := l.holidayOn(now); holiday != nil {
		if holiday.IsClosed {
			name := holiday.Name
			if name == "" {
				name = "holiday"
			}
			return Availability{Reason: "Closed for " + name}
		}
		if holiday.CustomHours != nil && holiday.CustomHours.Open != "" && holiday.CustomHours.Close != "" {
			clock := formatClock(now)
			open := clock >= holiday.CustomHours.Open && clock < holiday.CustomHours.Close
			a := Availability{
				Open:      open,
				OpenTime:  holiday.CustomHours.Open,
				CloseTime: holiday.CustomHours.Close,
			}
			if !open {
				name := holiday.Name
				if name == "" {
					name = "Holiday hours"
				}
				a.Reason = "Closed (" + name + ")"
			}
			return a
		}
	}

	hours, ok := l.WorkingHours[weekdayKey(now)]
	if !ok {
		return Availability{Reason: "Location information not available"}
	}

	clock := formatClock(now)
	open := clock >= hours.Open && clock < hours.Close
	a := Availability{Open: open, OpenTime: hours.Open, CloseTime: hours.Close}
	if !open {
		a.Reason = "Location closed. Opens at " + hours.Open
	}
	return a
}

// HoursOn returns the effective hours for a calendar date, holiday
// overrides included. The bool reports whether the day is fully closed.
func (l *Location) HoursOn(date time.Time) (DayHours, bool) {
	if holiday := l.holidayOn(date); holiday != nil {
		if holiday.IsClosed {
			return DayHours{}, true
		}
		if holiday.CustomHours != nil && holiday.CustomHours.Open != "" && holiday.CustomHours.Close != "" {
			return *holiday.CustomHours, false
		}
	}

	hours, ok := l.WorkingHours[weekdayKey(date)]
	if !ok {
		return DayHours{}, false
	}
	return hours, false
}

// NextAvailable scans up to 7 days forward from now and returns the
// first day the location would open, or nil when the whole window is
// closed.
func (l *Location) NextAvailable(now time.Time) *NextOpening {
	for i := 1; i <= 7; i++ {
		day := now.AddDate(0, 0, i)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

		hours, closed := l.HoursOn(day)
		if closed || hours.Open == "" {
			continue
		}
		return &NextOpening{
			Time: hours.Open,
			Date: day,
			Day:  day.Weekday().String(),
		}
	}
	return nil
}
