package util

import "time"

var kst = time.FixedZone("KST", 9*60*60)

// FormatKST formats t in Korea Standard Time.
func FormatKST(t time.Time, layout string) string {
	return t.In(kst).Format(layout)
}
