// Package suppression implements the pre-send suppression filter.
//
// This is the single source of truth for whether an email address should
// receive mail. Suppressions flow in from provider bounce and complaint
// notifications, admin actions, and user requests, and are checked before
// every send.
//
// The check path fails open: storage problems are logged and the address is
// treated as sendable, so a degraded suppression store never blocks the
// notification pipeline. The service layer depends on the Repository
// interface defined in repository.go and never touches DynamoDB directly.
package suppression
