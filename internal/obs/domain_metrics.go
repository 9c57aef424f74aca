package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CommissionResolutionsTotal counts effective-rate resolutions by precedence source.
	CommissionResolutionsTotal *prometheus.CounterVec
	// BreakdownsTotal counts computed profit breakdowns by tier and profit/loss outcome.
	BreakdownsTotal *prometheus.CounterVec
	// SettingsCacheTotal counts commission snapshot cache lookups by result.
	SettingsCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CommissionResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_resolutions_total",
			Help:      "Count of effective commission resolutions by precedence source.",
		}, []string{"source"})
		BreakdownsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breakdowns_total",
			Help:      "Count of computed profit breakdowns by tier and outcome.",
		}, []string{"tier", "outcome"})
		SettingsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_cache_total",
			Help:      "Count of commission snapshot cache lookups by result.",
		}, []string{"kind", "result"})

		for _, vec := range []**prometheus.CounterVec{&CommissionResolutionsTotal, &BreakdownsTotal, &SettingsCacheTotal} {
			mustRegisterCollector(reg, *vec, func(existing prometheus.Collector) {
				if v, ok := existing.(*prometheus.CounterVec); ok {
					*vec = v
				}
			})
		}
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
