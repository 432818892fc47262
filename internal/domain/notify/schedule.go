package notify

import "time"

// ResolveRunAfter computes the earliest allowed dispatch time for a job:
// digest delay first, then quiet-hours deferral in the user's local zone.
// The returned time equals base when nothing defers the dispatch.
func ResolveRunAfter(base time.Time, prefs Preferences) time.Time {
	candidate := base
	if prefs.Frequency.Mode == FrequencyDigest && prefs.Frequency.DigestHours > 0 {
		candidate = candidate.Add(time.Duration(prefs.Frequency.DigestHours) * time.Hour)
	}

	q := prefs.QuietHours
	if !q.Enabled {
		return candidate
	}

	loc, err := time.LoadLocation(q.Timezone)
	if err != nil || q.Timezone == "" {
		loc = time.UTC
	}

	local := candidate.In(loc)
	minute := local.Hour()*60 + local.Minute()

	if !inQuietWindow(minute, q.StartMinute, q.EndMinute) {
		return candidate
	}

	// Next local occurrence of the window end; same day if still ahead,
	// otherwise tomorrow. Covers the wrapped and the degenerate
	// (start == end, always quiet) windows alike.
	end := time.Date(local.Year(), local.Month(), local.Day(),
		q.EndMinute/60, q.EndMinute%60, 0, 0, loc)
	if !end.After(local) {
		end = end.AddDate(0, 0, 1)
	}

	return candidate.Add(end.Sub(local))
}

func inQuietWindow(minute, start, end int) bool {
	if start == end {
		// Degenerate window: the whole day counts as quiet.
		return true
	}
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}
