package scoring

import "time"

// AddMonths advances d by the given number of calendar months, clamping the
// day to the last valid day of the target month (Jan 31 + 3 months is
// Apr 30, never an overflow into May).
func AddMonths(d time.Time, months int) time.Time {
	y := d.Year() + (int(d.Month())-1+months)/12
	m := time.Month((int(d.Month())-1+months)%12 + 1)
	day := d.Day()
	if last := daysIn(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
