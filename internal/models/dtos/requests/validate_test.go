package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DirectiveRequest(t *testing.T) {
	err := Validate(&DirectiveRequest{DueHoursMode: "sometimes"})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "AircraftID is required")
	assert.Contains(t, msg, "InitialDueType is required")
	assert.Contains(t, msg, "ComplianceScope is required")
	assert.Contains(t, msg, "DueHoursMode must be one of [absolute incremental]")
}

func TestValidate_NestedCompliance(t *testing.T) {
	req := &MaintenanceLogRequest{
		AircraftID: "22222222-2222-2222-2222-222222222222",
		Date:       "2024-02-10",
		Compliance: []ComplianceEventRequest{
			{Links: []ComplianceLinkRequest{{URL: "logbook page 4"}}},
		},
	}

	err := Validate(req)
	require.Error(t, err)
	assert.Equal(t, "Compliance[0].Links[0].URL must be a URL", err.Error())
}

func TestValidate_Passes(t *testing.T) {
	due := "2024-07-04"
	months := 3
	req := &DirectiveRequest{
		AircraftID:      "22222222-2222-2222-2222-222222222222",
		InitialDueType:  "By Date",
		ComplianceScope: "One-Time",
		DueDate:         &due,
		DueMonths:       &months,
	}
	require.NoError(t, Validate(req))

	parsed, err := req.ParsedDueDate()
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, "2024-07-04", parsed.Format(DateLayout))
}

func TestMaintenanceLogRequest_ToModel(t *testing.T) {
	hobbs := 1200.0
	req := &MaintenanceLogRequest{
		AircraftID:      "22222222-2222-2222-2222-222222222222",
		Date:            "2024-02-10",
		Hobbs:           &hobbs,
		IsRecurringTask: true,
		IntervalType:    "Mixed",
	}

	m, err := req.ToModel()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10", m.Date.Format(DateLayout))
	assert.Equal(t, &hobbs, m.Hobbs)
	assert.True(t, m.IsRecurringTask)
}

func TestComplianceEventRequest_ToModel_NoDate(t *testing.T) {
	e, err := (&ComplianceEventRequest{ComplianceStatus: "Complied"}).ToModel()
	require.NoError(t, err)
	assert.True(t, e.ComplianceDate.IsZero())
	assert.Nil(t, e.ComplianceLinks)
}
