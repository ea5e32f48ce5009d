package daily

import "time"

// BlackoutHour is the hour from which fetched daily info is never treated
// as changed. The game rolls its daily content over at midnight and
// publishes provisional values during the last hour of the day.
const BlackoutHour = 23

// HasChanged decides whether fetched, retrieved at retrievedAt, differs
// meaningfully from persisted, stored at persistedAt (nil when nothing has
// been persisted yet):
//
//  1. during the blackout hour nothing counts as a change;
//  2. with nothing persisted, everything counts as a change;
//  3. when retrievedAt's day of month is greater than persistedAt's, only
//     [RolloverFields] are compared;
//  4. otherwise every field except [News] is compared.
//
// Hours and days are read in the locations the timestamps carry; callers
// pass both in UTC. Both snapshots must come from [Convert] or
// [Repository.Load] so that only the closed field set takes part in the
// comparison.
func HasChanged(fetched Info, retrievedAt time.Time, persisted Info, persistedAt *time.Time) bool {
	if retrievedAt.Hour() >= BlackoutHour {
		return false
	}
	if persistedAt == nil {
		return true
	}
	if retrievedAt.Day() > persistedAt.Day() {
		return differ(fetched, persisted, RolloverFields)
	}
	for _, f := range Fields {
		if f == News {
			continue
		}
		if !equalValue(fetched[f], persisted[f]) {
			return true
		}
	}
	return false
}

func differ(a, b Info, fields []Field) bool {
	for _, f := range fields {
		if !equalValue(a[f], b[f]) {
			return true
		}
	}
	return false
}

func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
