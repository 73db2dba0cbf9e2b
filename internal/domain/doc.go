// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// Sub-packages hold the pure scheduling rules: srs (interval calculation),
// personalize (onboarding mapping), adapt (parameter retuning), ranking
// (due-set ordering) and checkin (check-in escalation).
package domain
