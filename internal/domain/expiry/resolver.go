package expiry

import (
	"fmt"
	"time"

	"vega/internal/domain/symbol"
	"vega/pkg/errors"
)

const dateLayout = "2006-01-02"

// marketCloseHour approximates US equity market close in the caller's local
// time. A 0DTE request at or after this hour rolls to the next session.
const marketCloseHour = 16

// Resolution is the outcome of expiry resolution. EffectiveCadence differs
// from RequestedCadence when policy forced a fallback, and FallbackReason
// says why.
type Resolution struct {
	Date             string         `json:"date"`
	EffectiveCadence symbol.Cadence `json:"effective_cadence"`
	RequestedCadence symbol.Cadence `json:"requested_cadence"`
	FallbackReason   string         `json:"fallback_reason,omitempty"`
}

// Resolve computes the next valid option expiry for a symbol policy.
// Pure function of the supplied now; business-day counting is Mon-Fri only,
// deliberately ignoring market holidays (documented policy, not an
// oversight).
func Resolve(now time.Time, pol symbol.Policy, requested symbol.Cadence, minBusinessDays int, overrideDate string) (*Resolution, error) {
	if overrideDate != "" {
		parsed, err := time.Parse(dateLayout, overrideDate)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidExpiryOverride, "cannot parse %q as %s", overrideDate, dateLayout)
		}
		return &Resolution{
			Date:             parsed.Format(dateLayout),
			EffectiveCadence: symbol.CadenceCustom,
			RequestedCadence: requested,
		}, nil
	}

	res := &Resolution{
		RequestedCadence: requested,
		EffectiveCadence: requested,
	}

	cadence := requested
	switch cadence {
	case symbol.CadenceZeroDTE:
		if !pol.Supports0DTE {
			fallback := pol.FallbackCadence
			if fallback == "" {
				fallback = symbol.CadenceWeekly
			}
			res.EffectiveCadence = fallback
			res.FallbackReason = fmt.Sprintf("%s does not support same-day expiry, using %s", pol.Symbol, fallback)
			cadence = fallback
		}
	case symbol.CadenceWeekly, symbol.CadenceMonthly:
		// supported as requested
	default:
		res.EffectiveCadence = symbol.CadenceWeekly
		res.FallbackReason = fmt.Sprintf("unsupported cadence %q, using weekly", requested)
		cadence = symbol.CadenceWeekly
	}

	switch cadence {
	case symbol.CadenceZeroDTE:
		res.Date = sameDayExpiry(now).Format(dateLayout)
	case symbol.CadenceMonthly:
		res.Date = monthlyExpiry(now).Format(dateLayout)
	default:
		res.Date = weeklyExpiry(now, minBusinessDays).Format(dateLayout)
	}

	return res, nil
}

// sameDayExpiry returns today, or the next non-weekend day once local time
// reaches the market close approximation.
func sameDayExpiry(now time.Time) time.Time {
	day := now
	if now.Hour() >= marketCloseHour {
		day = day.AddDate(0, 0, 1)
	}
	for isWeekend(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// weeklyExpiry returns the next Friday (UTC calendar) at least
// minBusinessDays business days out, advancing a week when the nearest
// Friday is too close.
func weeklyExpiry(now time.Time, minBusinessDays int) time.Time {
	today := now.UTC()
	friday := today
	for friday.Weekday() != time.Friday {
		friday = friday.AddDate(0, 0, 1)
	}
	if businessDaysBetween(today, friday) < minBusinessDays {
		friday = friday.AddDate(0, 0, 7)
	}
	return friday
}

// monthlyExpiry returns the last Friday of the current month, or of the next
// month once today is past the 15th.
func monthlyExpiry(now time.Time) time.Time {
	t := now.UTC()
	year, month := t.Year(), t.Month()
	if t.Day() > 15 {
		// Advance the month index directly. AddDate on a month-end date
		// normalizes past the intended month (Jan 31 plus one month is
		// Mar 3).
		month++
	}
	return lastFridayOfMonth(year, month, t.Location())
}

func lastFridayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	// Day 0 of next month is the last calendar day of this month.
	day := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	for day.Weekday() != time.Friday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// businessDaysBetween counts Mon-Fri days after from, up to and including to.
func businessDaysBetween(from, to time.Time) int {
	count := 0
	day := from
	for day.Before(to) {
		day = day.AddDate(0, 0, 1)
		if !isWeekend(day) {
			count++
		}
	}
	return count
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
