// Package scheduler implements the background engine that keeps recurring
// tasks and reminders moving: a daily cycle that spawns dated occurrences
// from recurring templates, and a frequent scan that claims and delivers
// reminders for tasks coming due.
//
// The package consumes narrow interfaces (TemplateSource, ReminderSource,
// UserDirectory, Notifier) rather than full stores, so tests can drive the
// cycles with in-memory fakes. Both cycles run on a shared cron runner with
// per-entry overlap protection: a cycle still in flight causes the next tick
// to be skipped, never stacked.
package scheduler
