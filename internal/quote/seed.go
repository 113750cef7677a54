package quote

import "time"

// Seed returns the starter collection used when nothing usable is stored.
func Seed(now time.Time) []Record {
	return NormalizeAll([]Record{
		{Text: "Success is not final, failure is not fatal.", Category: "Motivation"},
		{Text: "In the middle of every difficulty lies opportunity.", Category: "Wisdom"},
		{Text: "Act as if what you do makes a difference. It does.", Category: "Inspiration"},
	}, now)
}
