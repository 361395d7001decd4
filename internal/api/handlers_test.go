package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"infinite-experiment/hangar/internal/auth"
	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"infinite-experiment/hangar/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "11111111-1111-1111-1111-111111111111"
	testAircraft = "22222222-2222-2222-2222-222222222222"
	testID       = "33333333-3333-3333-3333-333333333333"
)

// Mock services

type mockNotificationService struct {
	getFunc      func(ctx context.Context, userID, id string) (*gormModels.Notification, error)
	createFunc   func(ctx context.Context, userID string, n *gormModels.Notification) (*gormModels.Notification, error)
	updateFunc   func(ctx context.Context, userID, id string, edit *gormModels.Notification) (*gormModels.Notification, error)
	deleteFunc   func(ctx context.Context, userID, id string) error
	completeFunc func(ctx context.Context, userID, id string) (*services.CompletionResult, error)
}

func (m *mockNotificationService) GetNotification(ctx context.Context, userID, id string) (*gormModels.Notification, error) {
	return m.getFunc(ctx, userID, id)
}

func (m *mockNotificationService) CreateNotification(ctx context.Context, userID string, n *gormModels.Notification) (*gormModels.Notification, error) {
	return m.createFunc(ctx, userID, n)
}

func (m *mockNotificationService) UpdateNotification(ctx context.Context, userID, id string, edit *gormModels.Notification) (*gormModels.Notification, error) {
	return m.updateFunc(ctx, userID, id, edit)
}

func (m *mockNotificationService) DeleteNotification(ctx context.Context, userID, id string) error {
	return m.deleteFunc(ctx, userID, id)
}

func (m *mockNotificationService) CompleteNotification(ctx context.Context, userID, id string) (*services.CompletionResult, error) {
	return m.completeFunc(ctx, userID, id)
}

type mockDirectiveService struct {
	createFunc func(ctx context.Context, userID string, d *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error)
}

func (m *mockDirectiveService) GetDirective(ctx context.Context, userID, id string) (*gormModels.Directive, error) {
	return &gormModels.Directive{ID: id, AircraftID: testAircraft}, nil
}

func (m *mockDirectiveService) CreateDirective(ctx context.Context, userID string, d *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error) {
	return m.createFunc(ctx, userID, d, due)
}

func (m *mockDirectiveService) UpdateDirective(ctx context.Context, userID, id string, edit *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error) {
	return m.createFunc(ctx, userID, edit, due)
}

func (m *mockDirectiveService) ReconcileDirectiveNotifications(ctx context.Context, userID, directiveID string) (*services.ReconcileResult, error) {
	return &services.ReconcileResult{}, nil
}

func (m *mockDirectiveService) DeleteDirective(ctx context.Context, userID, id string) (*services.DeleteDirectiveResult, error) {
	return &services.DeleteDirectiveResult{}, nil
}

type mockComplianceService struct {
	saveFunc func(ctx context.Context, userID string, in services.SaveComplianceInput) (*services.SaveComplianceResult, error)
}

func (m *mockComplianceService) GetDirectiveCompliance(ctx context.Context, userID, directiveID string) (*services.DirectiveCompliance, error) {
	return &services.DirectiveCompliance{}, nil
}

func (m *mockComplianceService) SaveDirectiveCompliance(ctx context.Context, userID string, in services.SaveComplianceInput) (*services.SaveComplianceResult, error) {
	return m.saveFunc(ctx, userID, in)
}

func (m *mockComplianceService) DeleteComplianceEvent(ctx context.Context, userID, eventID string) (*services.DeleteComplianceResult, error) {
	return &services.DeleteComplianceResult{}, nil
}

type mockMaintenanceLogService struct {
	createFunc func(ctx context.Context, userID string, in services.MaintenanceLogInput) (*services.MaintenanceLogResult, error)
}

func (m *mockMaintenanceLogService) GetMaintenanceLog(ctx context.Context, userID, id string) (*gormModels.MaintenanceLog, []gormModels.ComplianceEvent, error) {
	return nil, nil, &services.ComplianceError{Code: constants.ErrCodeNotFound, Message: "not found"}
}

func (m *mockMaintenanceLogService) CreateMaintenanceLog(ctx context.Context, userID string, in services.MaintenanceLogInput) (*services.MaintenanceLogResult, error) {
	return m.createFunc(ctx, userID, in)
}

func (m *mockMaintenanceLogService) UpdateMaintenanceLog(ctx context.Context, userID, id string, in services.MaintenanceLogInput) (*services.MaintenanceLogResult, error) {
	return m.createFunc(ctx, userID, in)
}

func (m *mockMaintenanceLogService) DeleteMaintenanceLog(ctx context.Context, userID, id string) (*services.DeleteMaintenanceLogResult, error) {
	return &services.DeleteMaintenanceLogResult{}, nil
}

type mockAlertService struct {
	summaryFunc func(ctx context.Context, userID string) ([]services.AircraftAlerts, error)
}

func (m *mockAlertService) EvaluateAlert(ctx context.Context, userID, notificationID string) (constants.AlertState, error) {
	return constants.AlertDue, nil
}

func (m *mockAlertService) ListAlerts(ctx context.Context, userID, aircraftID string) (*services.AircraftAlerts, error) {
	return &services.AircraftAlerts{AircraftID: aircraftID}, nil
}

func (m *mockAlertService) Summary(ctx context.Context, userID string) ([]services.AircraftAlerts, error) {
	return m.summaryFunc(ctx, userID)
}

// Helpers

func newRequest(t *testing.T, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = auth.SetUserClaims(ctx, &auth.JWTClaims{UserUUID: testUser})
	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var resp common.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// Tests

func TestCreateNotificationHandler_Success(t *testing.T) {
	var got *gormModels.Notification
	svc := &mockNotificationService{
		createFunc: func(ctx context.Context, userID string, n *gormModels.Notification) (*gormModels.Notification, error) {
			assert.Equal(t, testUser, userID)
			got = n
			n.ID = testID
			return n, nil
		},
	}

	body := map[string]any{
		"aircraft_id":  testAircraft,
		"description":  "Annual inspection",
		"type":         "Inspection",
		"due_basis":    "Date",
		"initial_date": "2024-06-01",
		"recurrence":   "Yearly",
	}
	rr := httptest.NewRecorder()
	CreateNotificationHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/notifications", body, nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, "ok", resp.Status)

	require.NotNil(t, got)
	require.NotNil(t, got.InitialDate)
	assert.Equal(t, "2024-06-01", got.InitialDate.Format("2006-01-02"))
	assert.Equal(t, constants.RecurrenceYearly, got.Recurrence)
}

func TestCreateNotificationHandler_BadBodies(t *testing.T) {
	svc := &mockNotificationService{}

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"invalid json", "not json", http.StatusBadRequest, constants.ErrCodeBadRequest},
		{"missing due basis", map[string]any{"description": "x"}, http.StatusUnprocessableEntity, constants.ErrCodeValidation},
		{"bad date", map[string]any{"due_basis": "Date", "initial_date": "06/01/2024"}, http.StatusUnprocessableEntity, constants.ErrCodeValidation},
		{"negative alert days", map[string]any{"due_basis": "Date", "alert_days": -1}, http.StatusUnprocessableEntity, constants.ErrCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			CreateNotificationHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/notifications", tc.body, nil))

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.code, decodeResponse(t, rr).Code)
		})
	}
}

func TestNotificationHandler_MissingClaims(t *testing.T) {
	svc := &mockNotificationService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/"+testID, nil)

	rr := httptest.NewRecorder()
	GetNotificationHandler(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, constants.ErrCodeUnauthorized, decodeResponse(t, rr).Code)
}

func TestUpdateNotificationHandler_Frozen(t *testing.T) {
	svc := &mockNotificationService{
		updateFunc: func(ctx context.Context, userID, id string, edit *gormModels.Notification) (*gormModels.Notification, error) {
			assert.Equal(t, testID, id)
			return nil, &services.ComplianceError{Code: constants.ErrCodeFrozen, Message: "frozen"}
		},
	}

	rr := httptest.NewRecorder()
	req := newRequest(t, http.MethodPut, "/api/v1/notifications/"+testID, map[string]any{"due_basis": "Date"}, map[string]string{"id": testID})
	UpdateNotificationHandler(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCompleteNotificationHandler(t *testing.T) {
	t.Run("successor not created keeps completion", func(t *testing.T) {
		svc := &mockNotificationService{
			completeFunc: func(ctx context.Context, userID, id string) (*services.CompletionResult, error) {
				return &services.CompletionResult{Completed: &gormModels.Notification{ID: id, IsCompleted: true}},
					&services.ComplianceError{Code: constants.ErrCodeSuccessorFailed, Message: "insert failed"}
			},
		}

		rr := httptest.NewRecorder()
		req := newRequest(t, http.MethodPost, "/api/v1/notifications/"+testID+"/complete", nil, map[string]string{"id": testID})
		CompleteNotificationHandler(svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, constants.ErrCodeSuccessorFailed, resp.Code)
		assert.NotNil(t, resp.Data)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockNotificationService{
			completeFunc: func(ctx context.Context, userID, id string) (*services.CompletionResult, error) {
				return nil, &services.ComplianceError{Code: constants.ErrCodeNotFound, Message: "missing"}
			},
		}

		rr := httptest.NewRecorder()
		req := newRequest(t, http.MethodPost, "/api/v1/notifications/"+testID+"/complete", nil, map[string]string{"id": testID})
		CompleteNotificationHandler(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unclassified error", func(t *testing.T) {
		svc := &mockNotificationService{
			completeFunc: func(ctx context.Context, userID, id string) (*services.CompletionResult, error) {
				return nil, errors.New("boom")
			},
		}

		rr := httptest.NewRecorder()
		req := newRequest(t, http.MethodPost, "/api/v1/notifications/x/complete", nil, map[string]string{"id": "x"})
		CompleteNotificationHandler(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "boom")
	})
}

func TestCreateDirectiveHandler_PassesDueInput(t *testing.T) {
	svc := &mockDirectiveService{
		createFunc: func(ctx context.Context, userID string, d *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error) {
			assert.Equal(t, "AD 2023-12-05", d.Number)
			assert.Equal(t, constants.DueTypeByTotalTime, d.InitialDueType)
			require.NotNil(t, due.Hours)
			assert.Equal(t, 50.0, *due.Hours)
			assert.Equal(t, constants.DueHoursIncremental, due.Mode)
			assert.Nil(t, due.Date)
			return &services.DirectiveResult{Directive: d}, nil
		},
	}

	body := map[string]any{
		"aircraft_id":      testAircraft,
		"directive_number": "AD 2023-12-05",
		"title":            "Fuel selector valve",
		"initial_due_type": string(constants.DueTypeByTotalTime),
		"counter_type":     "Hobbs",
		"compliance_scope": string(constants.ScopeOneTime),
		"due_hours":        50,
		"due_hours_mode":   "incremental",
	}
	rr := httptest.NewRecorder()
	CreateDirectiveHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/directives", body, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateDirectiveHandler_Validation(t *testing.T) {
	svc := &mockDirectiveService{}

	body := map[string]any{
		"aircraft_id":      "not-a-uuid",
		"initial_due_type": "By Date",
		"compliance_scope": string(constants.ScopeOneTime),
		"due_hours_mode":   "sometimes",
	}
	rr := httptest.NewRecorder()
	CreateDirectiveHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/directives", body, nil))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Contains(t, resp.Message, "AircraftID must be a UUID")
	assert.Contains(t, resp.Message, "DueHoursMode must be one of")
}

func TestCreateDirectiveHandler_CounterBelowCurrent(t *testing.T) {
	svc := &mockDirectiveService{
		createFunc: func(ctx context.Context, userID string, d *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error) {
			return nil, &services.ComplianceError{Code: constants.ErrCodeCounterBelowActual, Message: "below"}
		},
	}

	body := map[string]any{
		"aircraft_id":      testAircraft,
		"initial_due_type": string(constants.DueTypeByTotalTime),
		"compliance_scope": string(constants.ScopeOneTime),
		"due_hours":        10,
		"due_hours_mode":   "absolute",
	}
	rr := httptest.NewRecorder()
	CreateDirectiveHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/directives", body, nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, constants.ErrCodeCounterBelowActual, decodeResponse(t, rr).Code)
}

func TestSaveDirectiveComplianceHandler_UsesPathDirective(t *testing.T) {
	svc := &mockComplianceService{
		saveFunc: func(ctx context.Context, userID string, in services.SaveComplianceInput) (*services.SaveComplianceResult, error) {
			assert.Equal(t, testID, in.DirectiveID)
			assert.Equal(t, testID, in.Event.DirectiveID)
			assert.True(t, in.MarkDirectiveCompleted)
			assert.Equal(t, "2024-04-10", in.Event.ComplianceDate.Format("2006-01-02"))
			require.Len(t, in.Event.ComplianceLinks, 1)
			return &services.SaveComplianceResult{Event: in.Event}, nil
		},
	}

	body := map[string]any{
		"directive_id":             "44444444-4444-4444-4444-444444444444",
		"compliance_date":          "2024-04-10",
		"compliance_status":        "Complied",
		"mark_directive_completed": true,
		"compliance_links": []map[string]string{
			{"description": "Logbook scan", "url": "https://example.com/scan.pdf"},
		},
	}
	rr := httptest.NewRecorder()
	req := newRequest(t, http.MethodPost, "/api/v1/directives/"+testID+"/compliance", body, map[string]string{"id": testID})
	SaveDirectiveComplianceHandler(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSaveDirectiveComplianceHandler_BadLink(t *testing.T) {
	svc := &mockComplianceService{}

	body := map[string]any{
		"compliance_date":  "2024-04-10",
		"compliance_links": []map[string]string{{"url": "not a url"}},
	}
	rr := httptest.NewRecorder()
	req := newRequest(t, http.MethodPost, "/api/v1/directives/"+testID+"/compliance", body, map[string]string{"id": testID})
	SaveDirectiveComplianceHandler(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateMaintenanceLogHandler_MapsCompliance(t *testing.T) {
	svc := &mockMaintenanceLogService{
		createFunc: func(ctx context.Context, userID string, in services.MaintenanceLogInput) (*services.MaintenanceLogResult, error) {
			assert.Equal(t, "2024-02-10", in.Log.Date.Format("2006-01-02"))
			assert.True(t, in.Log.IsRecurringTask)
			require.Len(t, in.Compliance, 2)
			assert.Equal(t, testID, in.Compliance[0].Event.DirectiveID)
			assert.False(t, in.Compliance[0].MarkDirectiveCompleted)
			assert.True(t, in.Compliance[1].MarkDirectiveCompleted)
			return &services.MaintenanceLogResult{Log: in.Log}, nil
		},
	}

	body := map[string]any{
		"aircraft_id":           testAircraft,
		"date":                  "2024-02-10",
		"description":           "100 hour inspection",
		"hobbs":                 1200,
		"is_recurring_task":     true,
		"interval_type":         "Mixed",
		"interval_months":       12,
		"interval_hours":        100,
		"interval_counter_type": "Hobbs",
		"compliance": []map[string]any{
			{"directive_id": testID, "compliance_status": "Complied"},
			{"directive_id": testAircraft, "compliance_status": "Complied", "mark_directive_completed": true},
		},
	}
	rr := httptest.NewRecorder()
	CreateMaintenanceLogHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/maintenance-logs", body, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestMaintenanceLogHandler_MissingDate(t *testing.T) {
	svc := &mockMaintenanceLogService{}

	rr := httptest.NewRecorder()
	body := map[string]any{"aircraft_id": testAircraft}
	CreateMaintenanceLogHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodPost, "/api/v1/maintenance-logs", body, nil))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeResponse(t, rr).Message, "Date is required")
}

func TestGetMaintenanceLogHandler_NotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	req := newRequest(t, http.MethodGet, "/api/v1/maintenance-logs/"+testID, nil, map[string]string{"id": testID})
	GetMaintenanceLogHandler(&mockMaintenanceLogService{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAlertHandlers(t *testing.T) {
	svc := &mockAlertService{
		summaryFunc: func(ctx context.Context, userID string) ([]services.AircraftAlerts, error) {
			return []services.AircraftAlerts{{AircraftID: testAircraft, AnyActive: true, Due: 1}}, nil
		},
	}

	rr := httptest.NewRecorder()
	AlertSummaryHandler(svc).ServeHTTP(rr, newRequest(t, http.MethodGet, "/api/v1/alerts/summary", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"any_active":true`)

	rr = httptest.NewRecorder()
	req := newRequest(t, http.MethodGet, "/api/v1/notifications/"+testID+"/alert", nil, map[string]string{"id": testID})
	NotificationAlertHandler(svc).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), string(constants.AlertDue))

	rr = httptest.NewRecorder()
	req = newRequest(t, http.MethodGet, "/api/v1/aircraft/"+testAircraft+"/alerts", nil, map[string]string{"aircraftID": testAircraft})
	AircraftAlertsHandler(svc).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), testAircraft)
}

func TestHealthCheckHandler(t *testing.T) {
	upSince := time.Now().Add(-time.Minute)

	rr := httptest.NewRecorder()
	HealthCheckHandler(map[string]HealthProbe{
		"database": func(ctx context.Context) error { return nil },
	}, upSince).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	HealthCheckHandler(map[string]HealthProbe{
		"database": func(ctx context.Context) error { return nil },
		"cache":    func(ctx context.Context) error { return errors.New("connection refused") },
	}, upSince).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "connection refused"))
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	cases := map[string]int{
		constants.ErrCodeBadRequest:         http.StatusBadRequest,
		constants.ErrCodeValidation:         http.StatusUnprocessableEntity,
		constants.ErrCodeCompletionNotAllow: http.StatusUnprocessableEntity,
		constants.ErrCodeUnauthorized:       http.StatusUnauthorized,
		constants.ErrCodeNotFound:           http.StatusNotFound,
		constants.ErrCodeFrozen:             http.StatusConflict,
		constants.ErrCodeCounterUnavailable: http.StatusServiceUnavailable,
		constants.ErrCodeStoreFailure:       http.StatusInternalServerError,
		"SOMETHING_ELSE":                    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, mapErrorCodeToHTTPStatus(code), code)
	}
}
