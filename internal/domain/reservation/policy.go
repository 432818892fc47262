package reservation

import "time"

// Policy is the escalation schedule for uncollected work: elapsed-time
// thresholds for reminder ordinals 1..N plus the independent ceiling past
// which the reservation is stored by policy.
type Policy struct {
	Thresholds  []time.Duration
	StoredAfter time.Duration
}

// DefaultPolicy mirrors the studio's standing schedule: reminders at 3, 5
// and 7 days, storage one day after the final reminder.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds:  []time.Duration{72 * time.Hour, 120 * time.Hour, 168 * time.Hour},
		StoredAfter: 192 * time.Hour,
	}
}

// NextDueOrdinal returns the reminder ordinal due now, or 0. Ordinal n is
// due only once: elapsed must have passed threshold[n] while the recorded
// reminder count is still below n.
func (p Policy) NextDueOrdinal(elapsed time.Duration, reminderCount int32) int {
	for i := len(p.Thresholds) - 1; i >= 0; i-- {
		ordinal := i + 1
		if elapsed >= p.Thresholds[i] && reminderCount < int32(ordinal) {
			return ordinal
		}
	}
	return 0
}

// StatusForOrdinal maps a due reminder ordinal to the storage status it
// carries: the final ordinal announces the hold, earlier ones a reminder.
func (p Policy) StatusForOrdinal(ordinal int) StorageStatus {
	if ordinal >= len(p.Thresholds) {
		return StorageHoldPending
	}
	return StorageReminderPending
}

// MandatedStatus recomputes the policy-mandated storage status purely from
// elapsed time and the reminder count, independent of what reminders were
// actually delivered.
func (p Policy) MandatedStatus(elapsed time.Duration, reminderCount int32) StorageStatus {
	if elapsed >= p.StoredAfter {
		return StorageStoredByPolicy
	}
	if reminderCount >= int32(len(p.Thresholds)) {
		return StorageHoldPending
	}
	if len(p.Thresholds) >= 2 && elapsed >= p.Thresholds[1] {
		return StorageHoldPending
	}
	if len(p.Thresholds) >= 1 && elapsed >= p.Thresholds[0] {
		return StorageReminderPending
	}
	return StorageActive
}
