// Package dates provides calendar arithmetic for fee computation. All
// durations are nominal: a year only counts once its month/day
// threshold has passed.
package dates

import "time"

// NominalYearDiff computes how many full calendar years lie between
// first and second. The result is negative when second is before first
// by more than a year.
func NominalYearDiff(first, second time.Time) int {
	years := second.Year() - first.Year()

	if second.Month() < first.Month() {
		years--
	} else if second.Month() == first.Month() && second.Day() < first.Day() {
		years--
	}

	return years
}

// AgeAt returns the nominal age in full years of someone born on
// birthday at the given date.
func AgeAt(birthday, at time.Time) int {
	return NominalYearDiff(birthday, at)
}
