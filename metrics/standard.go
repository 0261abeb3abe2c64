package metrics

// Pre-defined metrics for the pessimistic-proof service. The counters,
// gauges and histograms live in DefaultRegistry so they are globally
// accessible without passing a registry around; LeafProofRate is a
// package-level Meter that is not registered there.

var (
	// ---- Local exit tree metrics ----

	// ExitTreeAppends counts leaves appended to any local exit tree.
	ExitTreeAppends = DefaultRegistry.Counter("exittree.appends")
	// ExitTreeLeafCount tracks the leaf count of the most recently touched
	// local exit tree.
	ExitTreeLeafCount = DefaultRegistry.Gauge("exittree.leaf_count")

	// ---- Balance tree metrics ----

	// BalanceDebtRejections counts certificates rejected for leaving a
	// network with negative balance on some token.
	BalanceDebtRejections = DefaultRegistry.Counter("balance.debt_rejections")
	// BalanceTokensTracked tracks the number of distinct tokens currently
	// held in the aggregate balance state.
	BalanceTokensTracked = DefaultRegistry.Gauge("balance.tokens_tracked")

	// ---- Proof metrics ----

	// LeafProofsVerified counts successful single-batch leaf proofs.
	LeafProofsVerified = DefaultRegistry.Counter("proof.leaf_verified")
	// LeafProofRejections counts leaf proofs rejected for an exit root
	// mismatch.
	LeafProofRejections = DefaultRegistry.Counter("proof.leaf_rejected")
	// FullProofsVerified counts successful cross-network full proofs.
	FullProofsVerified = DefaultRegistry.Counter("proof.full_verified")
	// LeafProofDuration records leaf proof wall time in milliseconds.
	LeafProofDuration = DefaultRegistry.Histogram("proof.leaf_duration_ms")
	// FullProofDuration records full proof wall time in milliseconds.
	FullProofDuration = DefaultRegistry.Histogram("proof.full_duration_ms")
	// LeafProofRate tracks leaf-proof throughput as 1/5/15-minute EWMAs,
	// the same load-average shape Meter uses elsewhere in the teacher's
	// metrics package.
	LeafProofRate = NewMeter()
)
