// Package service holds the errors shared by the application services in
// its subpackages.
//
// Each subpackage owns one use-case area:
//
//   - review: due-set selection, review submission and stats
//   - profile: onboarding, preferences and check-ins
//   - adaptation: the daily retuning batch
//   - auth: bearer token validation
//
// Services take the store ports from internal/store and a store.Transactor
// for multi-write units of work. They never depend on a concrete database.
//
// Expected conditions are returned as sentinel errors (ErrNotOwned, the
// store not-found family, per-package sentinels); unexpected failures are
// wrapped in a ServiceError naming the operation.
package service
