package vesting

import (
	"math"
	"time"

	"github.com/synchrony-fi/vesting-server/pkg/scy"
)

type Group uint8

const (
	GroupTeam Group = iota
	GroupPrivate
)

func (g Group) String() string {
	switch g {
	case GroupTeam:
		return "team"
	case GroupPrivate:
		return "private"
	}

	return "unknown"
}

// TierInfo describes an investor class for schedule generation.
type TierInfo struct {
	Group Group
	// Number of monthly releases. Carried as a float so a tier can model a
	// partial first or last period, truncated before generation.
	ReleasePeriods float64
	// Total display amount to vest.
	Amount float64
}

const (
	secondsPerDay = 86400

	// One mean Gregorian year. Team schedules cliff for this long before
	// monthly releases begin.
	secondsPerYear = 31556952
)

// Generate produces the full release schedule for a tier starting at start.
//
// Quantities are floored in the display unit every period, and the final
// period adds back the accumulated fractional remainder, so the raw-unit sum
// always lands exactly on the raw-unit equivalent of tier.Amount. The
// floating point arithmetic must stay exactly as written: any reordering
// changes the final installment.
//
// Timestamps advance by one calendar month per release, where a month is the
// day count of the month containing the previous release. Private tiers
// release their cliff unlock at start itself; Team tiers wait a full year.
func Generate(tier TierInfo, start time.Time, decimals uint8) ([]Release, error) {
	periods := int(tier.ReleasePeriods)
	if periods < 1 || tier.Amount <= 0 {
		return nil, ErrInvalidSchedule
	}

	var increment int64
	if tier.Group == GroupTeam {
		increment = secondsPerYear
	}

	ts := start.Unix()
	releases := make([]Release, 0, periods)
	for i := 0; i < periods; i++ {
		ts += increment

		var quantity float64
		switch tier.Group {
		case GroupTeam:
			quantity = quantityAt(tier.Amount, i, periods, 0, 1.0)
		default:
			if i == 0 {
				quantity = tier.Amount * 0.1
			} else {
				quantity = quantityAt(tier.Amount, i, periods, 1, 0.9)
			}
		}

		releases = append(releases, Release{
			Timestamp: uint32(ts),
			Quantity:  scy.ToRawAmount(quantity, decimals),
		})

		increment = monthIncrement(ts)
	}

	return releases, nil
}

// quantityAt computes the display quantity of release i out of periods.
// adjustment discounts periods consumed outside the even split (the Private
// cliff unlock), and fraction scales the amount being split.
func quantityAt(amount float64, i, periods, adjustment int, fraction float64) float64 {
	quantity := amount * fraction / float64(periods-adjustment)
	floored := math.Floor(quantity)
	if i == periods-1 {
		// The final release keeps its own fractional part and takes back
		// the fraction floored away from every earlier even share.
		return quantity + (quantity-floored)*float64(periods-(1+adjustment))
	}
	return floored
}

// ScheduleTotal sums release quantities with overflow checking.
func ScheduleTotal(releases []Release) (uint64, error) {
	var total uint64
	for _, release := range releases {
		sum := total + release.Quantity
		if sum < total {
			return 0, ErrOverflow
		}
		total = sum
	}
	return total, nil
}

func monthIncrement(ts int64) int64 {
	return secondsPerDay * int64(daysInMonth(time.Unix(ts, 0).UTC()))
}

func daysInMonth(t time.Time) int {
	switch t.Month() {
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if isLeapYear(t.Year()) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
