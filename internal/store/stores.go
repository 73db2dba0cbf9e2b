package store

import "context"

// Stores bundles every persistence port. A Stores obtained inside
// Transactor.RunInTx is bound to that transaction.
type Stores struct {
	Items       ItemStore
	Profiles    ProfileStore
	Configs     ReviewConfigStore
	Reminders   ReminderStore
	Stats       StatsStore
	Activity    ActivityStore
	Adaptations AdaptationStore
	CheckIns    CheckInStore
}

// TxStoresFn runs with stores bound to a single transaction.
type TxStoresFn func(ctx context.Context, tx *Stores) error

// Transactor runs a unit of work atomically. The transaction commits when
// fn returns nil and rolls back otherwise.
type Transactor interface {
	RunInTx(ctx context.Context, fn TxStoresFn) error
}
