package observability

const (
	MetricPrefix = "cactuscoin"
)

// Metric names
const (
	BalanceChangesTotal = MetricPrefix + ".ledger.balance_changes_total"
	BalanceDeltaTotal   = MetricPrefix + ".ledger.coin_moved_total"
	WagersResolvedTotal = MetricPrefix + ".wagers.resolved_total"
	WagersActive        = MetricPrefix + ".wagers.active"
)

// Label keys
const (
	LabelPersisted = "persisted"
	LabelDirection = "direction"
	LabelState     = "state"
)

// Directions of a balance change
const (
	DirectionGain = "gain"
	DirectionLoss = "loss"
)
