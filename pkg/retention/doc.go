// Package retention prunes aged verdicts from the ledger and removes the
// evidence bundles they reference, optionally on a cron schedule.
package retention
