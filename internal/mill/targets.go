package mill

import (
	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/models/failure"
)

const noFailureDays = 365.0

// applyFailureTargets labels rows with the 7/14/30-day failure horizons.
// Within overlapping windows the nearest failure wins: dias_hasta_falla is
// the minimum and type and severity follow it.
func applyFailureTargets(records []dataset.Record, events []failure.Event) {
	for i := range records {
		r := &records[i]
		r.Failure7d, r.Failure14d, r.Failure30d = false, false, false
		r.FailureType = string(failure.None)
		r.Severity = 0
		r.DaysToFailure = noFailureDays
	}

	for _, ev := range events {
		for i := range records {
			r := &records[i]
			days := ev.Time.Sub(r.Timestamp).Hours() / 24
			if days <= 0 || days > 30 {
				continue
			}
			r.Failure30d = true
			if days <= 14 {
				r.Failure14d = true
			}
			if days <= 7 {
				r.Failure7d = true
			}
			if days < r.DaysToFailure {
				r.DaysToFailure = days
				r.FailureType = string(ev.Type)
				r.Severity = int(ev.Severity)
			}
		}
	}
}
