package compliance

import (
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"time"
)

// Summary is the roll-up of a directive's complied events.
type Summary struct {
	Status              constants.SummaryStatus
	FirstComplianceDate *time.Time
	LastComplianceDate  *time.Time
	FirstCounterValue   *float64
	LastCounterValue    *float64
	CounterType         constants.CounterType
}

// Summarize rebuilds a directive's status summary from scratch out of every
// existing compliance event. Only Complied events count; with none left the
// summary resets to Not Complied with every date and counter cleared.
func Summarize(d *gormModels.Directive, events []gormModels.ComplianceEvent) Summary {
	var first, last *gormModels.ComplianceEvent
	for i := range events {
		e := &events[i]
		if e.ComplianceStatus != constants.ComplianceComplied {
			continue
		}
		if first == nil || earlierEvent(e, first) {
			first = e
		}
		if last == nil || earlierEvent(last, e) {
			last = e
		}
	}

	if first == nil {
		return Summary{Status: constants.SummaryNotComplied}
	}

	status := constants.SummaryCompliedOnce
	if d != nil && d.IsRecurring() {
		status = constants.SummaryRecurringCurrent
	}

	firstDate := CivilDate(first.ComplianceDate)
	lastDate := CivilDate(last.ComplianceDate)
	return Summary{
		Status:              status,
		FirstComplianceDate: &firstDate,
		LastComplianceDate:  &lastDate,
		FirstCounterValue:   first.CounterValue,
		LastCounterValue:    last.CounterValue,
		CounterType:         last.CounterType,
	}
}

func earlierEvent(a, b *gormModels.ComplianceEvent) bool {
	da, db := CivilDate(a.ComplianceDate), CivilDate(b.ComplianceDate)
	if !da.Equal(db) {
		return da.Before(db)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Apply copies the summary onto a status row.
func (s Summary) Apply(row *gormModels.AircraftDirectiveStatus) {
	row.ComplianceStatus = s.Status
	row.FirstComplianceDate = s.FirstComplianceDate
	row.LastComplianceDate = s.LastComplianceDate
	row.FirstCounterValue = s.FirstCounterValue
	row.LastCounterValue = s.LastCounterValue
	row.CounterType = s.CounterType
}
