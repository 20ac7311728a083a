package kb

// Stats is a cheap snapshot of completion progress, read from an engine's
// ReportingContext callback (spec §9 "Global state" design note: this
// replaces the source's process-wide reporter).
type Stats struct {
	ActiveRules  int
	PendingRules int
	OverlapsSeen uint64
}

// Stats returns the current snapshot.
func (e *Engine) Stats() Stats {
	return Stats{
		ActiveRules:  e.store.ActiveLen(),
		PendingRules: e.store.PendingLen(),
		OverlapsSeen: e.overlapsTotal,
	}
}
