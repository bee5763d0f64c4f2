package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wedabay-ops/duty-attendance/backend/internal/attendance"
	"github.com/wedabay-ops/duty-attendance/backend/internal/config"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/export"
	"github.com/wedabay-ops/duty-attendance/backend/internal/report"
	"github.com/wedabay-ops/duty-attendance/backend/internal/roster"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
)

var monday = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	events map[string][]domain.AttendanceEvent
	err    error
}

func (f *fakeSource) Events(ctx context.Context, date time.Time) ([]domain.AttendanceEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[date.Format(domain.DateLayout)], nil
}

func (f *fakeSource) Statuses(ctx context.Context, date time.Time) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]string{"Amir": "SAKIT"}, nil
}

type fakePublisher struct {
	key string
	msg amqp.Publishing
	err error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.key = key
	p.msg = msg
	return p.err
}

type fakeUsers struct {
	users map[int64]*domain.User
}

func (f *fakeUsers) GetUserByID(id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUsers) GetUserByUsername(username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) GetAllUsers() ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUsers) CreateUser(user *domain.User) error {
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) UpdateUser(user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func defaultUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]*domain.User{
		1: {ID: 1, Username: "viewer", FullName: "Viewer", Role: domain.RoleViewer, IsActive: true},
		2: {ID: 2, Username: "admin", FullName: "Admin", Role: domain.RoleAdmin, IsActive: true},
	}}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.RabbitMQ.Queue = "report_email_queue"
	cfg.RabbitMQ.PublishTimeout = 1
	cfg.Attendance.Timezone = "UTC"
	cfg.Attendance.AnomalyThresholdHours = 12
	cfg.Attendance.MaxRangeDays = 62
	return cfg
}

func newTestHandler(t *testing.T, src *fakeSource, pub Publisher) *Handler {
	t.Helper()
	return newTestHandlerWithUsers(t, src, pub, defaultUsers())
}

func newTestHandlerWithUsers(t *testing.T, src *fakeSource, pub Publisher, users *fakeUsers) *Handler {
	t.Helper()

	r, err := roster.New([]domain.Division{
		{Name: "TLB", Code: "TLB", Priority: 1, Members: []string{"John", "Amir", "Budi"}},
	})
	require.NoError(t, err)

	reports := report.NewService(src, src, r, attendance.New(attendance.DefaultParameters), time.UTC)
	h, err := NewHandler(testConfig(), users, pub, reports, export.NewExporter())
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func defaultSource() *fakeSource {
	day := func(h, m int) time.Time { return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	return &fakeSource{events: map[string][]domain.AttendanceEvent{
		"2025-01-06": {
			{EmployeeName: "John", Timestamp: day(7, 10)},
			{EmployeeName: "John", Timestamp: day(17, 0)},
		},
	}}
}

func authedRequest(t *testing.T, h *Handler, method, target string, body []byte) *http.Request {
	t.Helper()
	return requestAs(t, h, 1, domain.RoleViewer, method, target, body)
}

func requestAs(t *testing.T, h *Handler, userID int64, role domain.Role, method, target string, body []byte) *http.Request {
	t.Helper()

	token, _, err := h.signToken(userID, string(role))
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestReportsRequireLogin(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/daily?date=2025-01-06", nil))

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "not logged in", resp.Message)
}

func TestRejectsForgedToken(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/roster", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, "invalid token", decode(t, rec).Message)
}

func TestGetDailyReport(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/daily?date=2025-01-06", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool             `json:"success"`
		Data    domain.DayReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Rows, 3)
	assert.Equal(t, domain.StatusPartialDuty, resp.Data.Rows[0].Status)
	assert.True(t, resp.Data.Rows[0].IsLate)
	assert.Equal(t, domain.StatusPermit, resp.Data.Rows[1].Status)
	assert.Equal(t, domain.StatusAbsent, resp.Data.Rows[2].Status)
	assert.Equal(t, 1, resp.Data.Metrics.Present)
}

func TestGetDailyReportInvalidDate(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/daily?date=06-01-2025", nil))

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "YYYY-MM-DD")
}

func TestGetDailyReportNoData(t *testing.T) {
	h := newTestHandler(t, &fakeSource{err: source.ErrMissingColumns}, &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/daily?date=2025-01-06", nil))

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "no data available for this request", resp.Message)
}

func TestExportDailyReport(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/daily/export?date=2025-01-06", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_2025-01-06.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("06-Jan", "A2")
	require.NoError(t, err)
	assert.Equal(t, "John", name)
}

func TestExportRangeReportValidatesRange(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/range/export?from=2025-01-01&to=2025-04-01", nil))
	assert.Contains(t, decode(t, rec).Message, "62 days")

	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/range/export?from=2025-01-06&to=2025-01-07", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"06-Jan", "07-Jan"}, f.GetSheetList())
}

func TestGetAnomalies(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/anomalies?from=2025-01-06&to=2025-01-06&thresholdHours=9", nil))

	var resp struct {
		Success bool             `json:"success"`
		Data    []domain.Anomaly `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "John", resp.Data[0].EmployeeName)

	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/anomalies?from=2025-01-06&to=2025-01-06&thresholdHours=-1", nil))
	assert.False(t, decode(t, rec).Success)
}

func TestGetWeeklyTrendsValidatesWeeks(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/trends?end=2025-01-06&weeks=53", nil))
	assert.False(t, decode(t, rec).Success)

	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/trends?end=2025-01-06&weeks=1", nil))
	assert.True(t, decode(t, rec).Success)
}

func TestGetDivisionStatsAndRoster(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/divisions?date=2025-01-06", nil))
	var stats struct {
		Data []domain.DivisionStat `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats.Data, 1)
	assert.Equal(t, 3, stats.Data[0].Total)
	assert.Equal(t, 1, stats.Data[0].Present)

	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/roster", nil))
	assert.True(t, decode(t, rec).Success)
}

func TestUsersRequireAdmin(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/users", nil))

	assert.Equal(t, "permission denied", decode(t, rec).Message)
}

func TestAdminListsUsers(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, requestAs(t, h, 2, domain.RoleAdmin, http.MethodGet, "/users", nil))

	assert.True(t, decode(t, rec).Success)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	users := defaultUsers()
	h := newTestHandlerWithUsers(t, defaultSource(), &fakePublisher{}, users)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, "/reports/daily?date=2025-01-06", nil))
	require.True(t, decode(t, rec).Success)

	// token 仍然有效，但账号已被停用
	users.users[1].IsActive = false

	for _, target := range []string{"/reports/daily?date=2025-01-06", "/roster", "/reports/trends"} {
		rec = httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, authedRequest(t, h, http.MethodGet, target, nil))

		resp := decode(t, rec)
		assert.False(t, resp.Success, target)
		assert.Equal(t, "account is inactive", resp.Message, target)
	}
}

func TestUnknownAccountIsRejected(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, requestAs(t, h, 99, domain.RoleViewer, http.MethodGet, "/roster", nil))

	assert.Equal(t, "account not found", decode(t, rec).Message)
}

func TestRoleIsReadFromAccount(t *testing.T) {
	users := defaultUsers()
	h := newTestHandlerWithUsers(t, defaultSource(), &fakePublisher{}, users)

	// 管理员被降级后，旧 token 中的 admin 角色不再生效
	users.users[2].Role = domain.RoleViewer

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, requestAs(t, h, 2, domain.RoleAdmin, http.MethodGet, "/users", nil))

	assert.Equal(t, "permission denied", decode(t, rec).Message)
}

func emailRequest(t *testing.T, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/reports/daily/email", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), MyInfoCtx, &domain.User{ID: 1, FullName: "Admin", Role: domain.RoleAdmin, IsActive: true})
	return req.WithContext(ctx)
}

func TestEmailDailyReportPublishes(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHandler(t, defaultSource(), pub)

	rec := httptest.NewRecorder()
	h.EmailDailyReport(rec, emailRequest(t, `{"date":"2025-01-06","to":"ops@example.com"}`))

	require.True(t, decode(t, rec).Success)
	assert.Equal(t, "report_email_queue", pub.key)
	assert.NotEmpty(t, pub.msg.MessageId)

	var msg struct {
		ID   string                     `json:"id"`
		Type string                     `json:"type"`
		To   string                     `json:"to"`
		Data domain.DailyReportMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pub.msg.Body, &msg))
	assert.Equal(t, pub.msg.MessageId, msg.ID)
	assert.Equal(t, domain.MailTypeDailyReport, msg.Type)
	assert.Equal(t, "ops@example.com", msg.To)
	assert.Equal(t, "2025-01-06", msg.Data.Date)
	assert.Equal(t, "Admin", msg.Data.RequestedBy)
}

func TestEmailDailyReportValidation(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHandler(t, defaultSource(), pub)

	rec := httptest.NewRecorder()
	h.EmailDailyReport(rec, emailRequest(t, `{"date":"yesterday","to":"not-an-email"}`))

	assert.False(t, decode(t, rec).Success)
	assert.Empty(t, pub.key)
}

func TestEmailDailyReportPublishFailure(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{err: errors.New("channel closed")})

	rec := httptest.NewRecorder()
	h.EmailDailyReport(rec, emailRequest(t, `{"date":"2025-01-06","to":"ops@example.com"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode(t, rec).Message)
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, defaultSource(), &fakePublisher{})

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
