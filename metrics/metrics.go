package metrics

import "github.com/prometheus/client_golang/prometheus"

// ObjMetrics instruments the object model's symbol table. All fields
// are plain counters; the struct is injected where needed and may be
// nil for tests.
type ObjMetrics struct {
	SymbolsAdded           prometheus.Counter
	SymbolSizeConflicts    prometheus.Counter
	RelocationTargetMisses prometheus.Counter
}

func New(reg prometheus.Registerer) *ObjMetrics {
	m := &ObjMetrics{
		SymbolsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decomp_obj_symbols_added_total",
			Help: "Total number of symbols appended to the symbol table",
		}),
		SymbolSizeConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decomp_obj_symbol_size_conflicts_total",
			Help: "Total number of conflicting symbol sizes observed across analysis passes",
		}),
		RelocationTargetMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decomp_obj_relocation_target_misses_total",
			Help: "Total number of relocation targets that resolved to no symbol",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SymbolsAdded,
			m.SymbolSizeConflicts,
			m.RelocationTargetMisses,
		)
	}
	return m
}
