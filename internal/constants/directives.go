package constants

// DueType is how a directive's first compliance is scheduled.
type DueType string

const (
	DueTypeBeforeNextFlight DueType = "Before Next Flight"
	DueTypeByDate           DueType = "By Date"
	DueTypeByTotalTime      DueType = "By Total Time (Hours)"
	DueTypeByCalendar       DueType = "By Calendar"
	DueTypeAtNextInspection DueType = "At Next Inspection"
	DueTypeOther            DueType = "Other"
)

func (d DueType) Valid() bool {
	switch d {
	case DueTypeBeforeNextFlight, DueTypeByDate, DueTypeByTotalTime,
		DueTypeByCalendar, DueTypeAtNextInspection, DueTypeOther:
		return true
	}
	return false
}

// Basis returns the due basis of the notification a directive with this due
// type generates. ok is false for due types that generate no notification.
func (d DueType) Basis() (basis DueBasis, ok bool) {
	switch d {
	case DueTypeBeforeNextFlight, DueTypeAtNextInspection, DueTypeByDate, DueTypeByCalendar:
		return DueBasisDate, true
	case DueTypeByTotalTime:
		return DueBasisCounter, true
	}
	return "", false
}

// ComplianceScope is whether a directive is satisfied once or repeatedly.
type ComplianceScope string

const (
	ScopeOneTime       ComplianceScope = "One-Time"
	ScopeRecurring     ComplianceScope = "Recurring"
	ScopeConditional   ComplianceScope = "Conditional"
	ScopeInformational ComplianceScope = "Informational Only"
)

func (s ComplianceScope) Valid() bool {
	switch s {
	case ScopeOneTime, ScopeRecurring, ScopeConditional, ScopeInformational:
		return true
	}
	return false
}

// AllowsManualCompletion reports whether a user may confirm directive
// completion after a compliance save.
func (s ComplianceScope) AllowsManualCompletion() bool {
	return s == ScopeRecurring || s == ScopeConditional
}

// DirectiveStatus is the lifecycle status of the directive itself.
type DirectiveStatus string

const (
	DirectiveActive     DirectiveStatus = "Active"
	DirectiveSuperseded DirectiveStatus = "Superseded"
	DirectiveCancelled  DirectiveStatus = "Cancelled"
	DirectiveProposed   DirectiveStatus = "Proposed"
	DirectiveCompleted  DirectiveStatus = "Completed"
)

func (s DirectiveStatus) Valid() bool {
	switch s {
	case DirectiveActive, DirectiveSuperseded, DirectiveCancelled, DirectiveProposed, DirectiveCompleted:
		return true
	}
	return false
}

// Closed reports whether the directive no longer wants notifications.
func (s DirectiveStatus) Closed() bool {
	return s == DirectiveCompleted || s == DirectiveCancelled || s == DirectiveSuperseded
}

// ComplianceStatus is the status of a single compliance event.
type ComplianceStatus string

const (
	ComplianceNotComplied ComplianceStatus = "Not Complied"
	ComplianceComplied    ComplianceStatus = "Complied"
)

func (s ComplianceStatus) Valid() bool {
	return s == ComplianceNotComplied || s == ComplianceComplied
}

// SummaryStatus is the roll-up compliance status stored in
// aircraft_directive_status.
type SummaryStatus string

const (
	SummaryNotComplied      SummaryStatus = "Not Complied"
	SummaryCompliedOnce     SummaryStatus = "Complied Once"
	SummaryRecurringCurrent SummaryStatus = "Recurring (Current)"
	SummaryNotApplicable    SummaryStatus = "Not Applicable"
)

// ApplicabilityStatus records whether a directive applies to the aircraft.
type ApplicabilityStatus string

const (
	ApplicabilityApplicable    ApplicabilityStatus = "Applicable"
	ApplicabilityNotApplicable ApplicabilityStatus = "Not Applicable"
	ApplicabilityUnknown       ApplicabilityStatus = "Unknown"
)

// HistoryAction is the kind of directive_history entry.
type HistoryAction string

const (
	HistoryCreate     HistoryAction = "Create"
	HistoryDelete     HistoryAction = "Delete"
	HistoryCompliance HistoryAction = "Compliance"
)

// DueHoursMode selects how a By Total Time target is entered.
type DueHoursMode string

const (
	DueHoursAbsolute    DueHoursMode = "absolute"
	DueHoursIncremental DueHoursMode = "incremental"
)

// IntervalType drives which notifications a recurring maintenance task keeps.
type IntervalType string

const (
	IntervalCalendar IntervalType = "Calendar"
	IntervalHours    IntervalType = "Hours"
	IntervalMixed    IntervalType = "Mixed"
)

func (i IntervalType) Valid() bool {
	return i == IntervalCalendar || i == IntervalHours || i == IntervalMixed
}

// Bases returns the due bases a recurring task with this interval needs.
func (i IntervalType) Bases() []DueBasis {
	switch i {
	case IntervalCalendar:
		return []DueBasis{DueBasisDate}
	case IntervalHours:
		return []DueBasis{DueBasisCounter}
	case IntervalMixed:
		return []DueBasis{DueBasisDate, DueBasisCounter}
	}
	return nil
}
