// Package timeline defines the snapshot retention policy model for volumes.
//
// A retention policy pairs a recurrence rule (when a snapshot fires) with a
// retention period in seconds (how long the snapshot is kept). Policies are
// persisted by a Store and attached to volumes; the reconcile subpackage
// converges a volume's attached set to a desired set.
//
// # Recurrence Rules
//
// Rules are a closed sum type with one variant per frequency, so a rule can
// never carry fields that belong to another frequency:
//
//	timeline.Daily{At: timeline.TimeOfDay{Hour: 0, Minute: 0}}
//	timeline.Weekly{At: midnight, Day: timeline.Monday}
//	timeline.Monthly{At: midnight, Day: 1}
//	timeline.Yearly{At: midnight, Day: 1, Month: time.January}
//
// On the wire rules use RRULE text:
//
//	FREQ=WEEKLY;BYDAY=MO;BYHOUR=0;BYMINUTE=0
//
// # Durations
//
// Retention is stored in seconds. ToSeconds and FromSeconds convert between
// seconds and a (magnitude, unit) pair using fixed unit lengths: a month is
// 31 days and a year is 366 days.
//
//	secs := timeline.ToSeconds(2, timeline.Week) // 1209600
//	mag, unit := timeline.FromSeconds(secs)      // 2, Week
//
// # Storage Backends
//
// The Store interface is implemented by the storage subpackage (memory,
// SQLite) and by a REST client for a remote policy service.
package timeline
