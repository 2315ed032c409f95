// Package billing holds the subscriber, invoice and payment aggregates.
//
// A Customer carries the running debt and the lump-sum payment flag that the
// isolation engine evaluates. Invoices are issued once per calendar month per
// customer and move unpaid -> overdue -> paid; payments settle the oldest
// overdue invoices first. BillingLog is the append-only audit trail for every
// state change that touches money or connectivity.
package billing
