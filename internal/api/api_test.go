package api

import (
	"banking_system/internal/config"    // Configuration
	"banking_system/internal/db/dbtest" // In-memory test database
	"banking_system/internal/domain"    // Domain models and errors
	"bytes"                             // Request bodies
	"context"                           // Request context
	"encoding/json"                     // JSON encoding/decoding
	"net/http"                          // HTTP status codes
	"net/http/httptest"                 // HTTP test recorder
	"testing"                           // Go testing
	"time"                              // Time durations

	"github.com/alicebob/miniredis/v2"    // In-memory Redis server
	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/redis/go-redis/v9"        // Redis client
	"github.com/shopspring/decimal"       // Decimal money
	"github.com/stretchr/testify/assert"  // Assertions
	"github.com/stretchr/testify/require" // Fatal assertions
	"golang.org/x/crypto/bcrypt"          // Password hashing
	"gorm.io/gorm"                        // GORM ORM library
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr[T any](v T) *T { return &v }

func newServer(t *testing.T, cfg *config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gdb := dbtest.New(t)
	if cfg == nil {
		cfg = &config.Config{ReportCacheTTL: time.Minute}
	}
	return NewRouter(cfg, gdb, nil), gdb
}

func do(t *testing.T, r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func seedAccount(t *testing.T, gdb *gorm.DB, accNumber int, balance string) {
	t.Helper()
	acc := domain.Account{AccNumber: accNumber, Type: ptr("CHQ"), Balance: decimal.NewNullDecimal(decimal.RequireFromString(balance))}
	require.NoError(t, gdb.Create(&acc).Error)
}

func TestDeposit(t *testing.T) {
	r, gdb := newServer(t, nil)
	seedAccount(t, gdb, 1001, "100.00")

	w := do(t, r, http.MethodPost, "/account/1001/deposit", `{"amount": 50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accNumber":1001,"newBalance":"150.00"}`, w.Body.String())

	var rows []domain.Transaction
	require.NoError(t, gdb.Where("acc_number = ?", 1001).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TransNumber)
}

func TestDepositAcceptsNumericString(t *testing.T) {
	r, gdb := newServer(t, nil)
	seedAccount(t, gdb, 5, "0")

	w := do(t, r, http.MethodPost, "/account/5/deposit", `{"amount": "12.34"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accNumber":5,"newBalance":"12.34"}`, w.Body.String())
}

func TestWithdraw(t *testing.T) {
	r, gdb := newServer(t, nil)
	seedAccount(t, gdb, 9, "80.25")

	w := do(t, r, http.MethodPost, "/account/9/withdraw", `{"amount": 80.26}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient funds", errorOf(t, w))

	var count int64
	require.NoError(t, gdb.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)

	w = do(t, r, http.MethodPost, "/account/9/withdraw", `{"amount": 80.25}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accNumber":9,"newBalance":"0.00"}`, w.Body.String())
}

func TestMoneyRequestErrors(t *testing.T) {
	r, gdb := newServer(t, nil)
	seedAccount(t, gdb, 1, "10")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		msg    string
	}{
		{"zero", "/account/1/deposit", `{"amount": 0}`, http.StatusBadRequest, "Invalid amount"},
		{"negative", "/account/1/withdraw", `{"amount": -3}`, http.StatusBadRequest, "Invalid amount"},
		{"too precise", "/account/1/deposit", `{"amount": 0.001}`, http.StatusBadRequest, "Invalid amount"},
		{"missing amount", "/account/1/deposit", `{}`, http.StatusBadRequest, "Invalid amount"},
		{"not a number", "/account/1/deposit", `{"amount": "ten"}`, http.StatusBadRequest, "Invalid amount"},
		{"huge exponent", "/account/1/deposit", `{"amount": 1e300000}`, http.StatusBadRequest, "Invalid amount"},
		{"tiny exponent", "/account/1/deposit", `{"amount": 1e-300000}`, http.StatusBadRequest, "Invalid amount"},
		{"bad account number", "/account/abc/deposit", `{"amount": 1}`, http.StatusBadRequest, "Invalid account number"},
		{"unknown account", "/account/404/deposit", `{"amount": 1}`, http.StatusNotFound, "Account not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, errorOf(t, w))
		})
	}
}

func TestAccountAndHistory(t *testing.T) {
	r, gdb := newServer(t, nil)
	seedAccount(t, gdb, 3, "0")
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/account/3/deposit", `{"amount": 50}`).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/account/3/withdraw", `{"amount": 20.5}`).Code)

	w := do(t, r, http.MethodGet, "/account/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var acc AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acc))
	assert.Equal(t, "29.50", *acc.Balance)
	assert.Equal(t, "CHQ", *acc.Type)

	w = do(t, r, http.MethodGet, "/account/3/transactions?page_size=1&page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Transactions []LedgerEntryResponse `json:"transactions"`
		Total        int64                 `json:"total"`
		TotalPages   int                   `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, 2, page.Transactions[0].TransNumber)
	assert.Equal(t, "-20.50", *page.Transactions[0].Amount)

	w = do(t, r, http.MethodGet, "/account/77", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeeJoinAndLeave(t *testing.T) {
	r, gdb := newServer(t, nil)
	require.NoError(t, gdb.Create(&domain.Branch{BranchNumber: 7, BranchName: ptr("London")}).Error)

	w := do(t, r, http.MethodPost, "/employee/join", `{"sin": 42, "firstName": "Ada", "lastName": "Byron", "salary": 70000, "branchNumber": 7}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var emp domain.Employee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emp))
	assert.Equal(t, 42, emp.SIN)
	assert.Equal(t, 70000, *emp.Salary)

	w = do(t, r, http.MethodPost, "/employee/join", `{"sin": 42, "firstName": "Ada", "lastName": "Byron"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/employee/join", `{"firstName": "No", "lastName": "Sin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/employee/join", `{"sin": 43, "firstName": "Lost", "lastName": "Soul", "branchNumber": 99}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/employee/join", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", errorOf(t, w))

	require.NoError(t, gdb.Model(&domain.Branch{}).Where("branch_number = ?", 7).Update("manager_sin", 42).Error)

	w = do(t, r, http.MethodPost, "/employee/leave", `{"sin": 42}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Employee removed"}`, w.Body.String())

	var branch domain.Branch
	require.NoError(t, gdb.Where("branch_number = ?", 7).Take(&branch).Error)
	assert.Nil(t, branch.ManagerSIN)

	w = do(t, r, http.MethodPost, "/employee/leave", `{"sin": 42}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Employee not found", errorOf(t, w))

	w = do(t, r, http.MethodPost, "/employee/leave", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProblemRoutes(t *testing.T) {
	r, gdb := newServer(t, nil)

	for _, path := range []string{"/problems/12", "/problems/13", "/problems/16", "/problems/21", "/problems/x"} {
		w := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Problem not found", errorOf(t, w), path)
	}

	w := do(t, r, http.MethodGet, "/problems/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	require.NoError(t, gdb.Create(&domain.Branch{BranchNumber: 1, BranchName: ptr("Moscow")}).Error)
	require.NoError(t, gdb.Create(&domain.Employee{SIN: 1, Salary: ptr(1000), BranchNumber: ptr(1)}).Error)
	require.NoError(t, gdb.Create(&domain.Employee{SIN: 2, Salary: ptr(2500), BranchNumber: ptr(1)}).Error)

	w = do(t, r, http.MethodGet, "/problems/14", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalSalary":3500}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/problems/6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOperatorAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	r, gdb := newServer(t, &config.Config{
		JWTSecret:    "test-secret",
		OperatorUser: "teller",
		OperatorHash: string(hash),
	})
	seedAccount(t, gdb, 1, "0")

	w := do(t, r, http.MethodPost, "/account/1/deposit", `{"amount": 5}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/auth/token", `{"username": "teller", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/auth/token", `{"username": "teller", "password": "s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var auth AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	w = do(t, r, http.MethodPost, "/account/1/deposit", `{"amount": 5}`, "Authorization", "Bearer "+auth.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accNumber":1,"newBalance":"5.00"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/account/1/deposit", `{"amount": 5}`, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Reads stay open
	w = do(t, r, http.MethodGet, "/account/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRouteAbsentWithoutSecret(t *testing.T) {
	r, _ := newServer(t, nil)
	w := do(t, r, http.MethodPost, "/auth/token", `{"username": "a", "password": "b"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportCacheWithoutRedis(t *testing.T) {
	var nilCache *ReportCache
	ctx := context.Background()
	_, ok := nilCache.Generation(ctx)
	assert.False(t, ok)
	nilCache.Set(ctx, 0, 1, json.RawMessage(`[]`))
	nilCache.Invalidate(ctx)
	_, found := nilCache.Get(ctx, 0, 1)
	assert.False(t, found)

	cache := NewReportCache(nil, time.Minute)
	cache.Set(ctx, 0, 1, json.RawMessage(`[]`))
	_, found = cache.Get(ctx, 0, 1)
	assert.False(t, found)
	assert.Equal(t, "report:problem:7:3", reportKey(3, 7))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestReportServedFromCacheUntilWrite(t *testing.T) {
	mr, rdb := newRedis(t)
	gdb := dbtest.New(t)
	r := NewRouter(&config.Config{ReportCacheTTL: time.Minute}, gdb, rdb)
	require.NoError(t, gdb.Create(&domain.Branch{BranchNumber: 1, BranchName: ptr("Moscow")}).Error)
	require.NoError(t, gdb.Create(&domain.Employee{SIN: 1, Salary: ptr(1000), BranchNumber: ptr(1)}).Error)

	w := do(t, r, http.MethodGet, "/problems/14", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalSalary":1000}`, w.Body.String())
	assert.True(t, mr.Exists(reportKey(0, 14)))

	// A change made behind the service is not seen while the entry lives
	require.NoError(t, gdb.Create(&domain.Employee{SIN: 2, Salary: ptr(500), BranchNumber: ptr(1)}).Error)
	w = do(t, r, http.MethodGet, "/problems/14", "")
	assert.JSONEq(t, `{"totalSalary":1000}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/employee/join", `{"sin": 3, "firstName": "Ivan", "lastName": "Petrov", "salary": 250, "branchNumber": 1}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, mr.Exists(reportKey(0, 14)))

	w = do(t, r, http.MethodGet, "/problems/14", "")
	assert.JSONEq(t, `{"totalSalary":1750}`, w.Body.String())
	assert.True(t, mr.Exists(reportKey(1, 14)))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(reportKey(1, 14)))
}

func TestReportComputedBeforeWriteIsNotServedAfterIt(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	cache := NewReportCache(rdb, time.Minute)

	gen, ok := cache.Generation(ctx)
	require.True(t, ok)
	// The write commits and invalidates while the report is still running
	cache.Invalidate(ctx)
	cache.Set(ctx, gen, 14, json.RawMessage(`{"totalSalary":1}`))

	current, ok := cache.Generation(ctx)
	require.True(t, ok)
	assert.Equal(t, gen+1, current)
	_, found := cache.Get(ctx, current, 14)
	assert.False(t, found)
}

func TestDepositInvalidatesReports(t *testing.T) {
	mr, rdb := newRedis(t)
	gdb := dbtest.New(t)
	r := NewRouter(&config.Config{ReportCacheTTL: time.Minute}, gdb, rdb)
	seedAccount(t, gdb, 1, "0")

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/problems/5", "").Code)
	require.True(t, mr.Exists(reportKey(0, 5)))

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/account/1/deposit", `{"amount": 1}`).Code)
	v, err := mr.Get(reportGenKey)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.False(t, mr.Exists(reportKey(0, 5)))
}
