// Package store defines the persistence ports used by the scheduling
// services. Implementations live in platform/postgres and store/memstore.
package store
