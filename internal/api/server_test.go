package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/config"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/pkg/jwthelper"
)

const signingKey = "test-signing-key"

type testServer struct {
	t      *testing.T
	server *Server
	tokens map[domain.Role]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	conf := &config.AppConfig{
		API:      &config.APIConfig{Environment: "test", JWTSigningKey: signingKey},
		Gin:      &config.GinConfig{Mode: gin.TestMode},
		Postgres: &config.PostgresConfig{},
		Storage:  &config.StorageConfig{Driver: StorageMemory},
		Inventory: &config.InventoryConfig{
			LowStockThreshold:  10,
			ExpiringWindowDays: 30,
			LockTimeout:        2 * time.Second,
		},
	}

	storage, err := NewStorage(StorageMemory, nil, conf.Inventory.LockTimeout)
	require.NoError(t, err)

	s, err := NewServer(conf, storage)
	require.NoError(t, err)

	ts := &testServer{t: t, server: s, tokens: make(map[domain.Role]string)}
	roles := []domain.Role{domain.RoleAdmin, domain.RolePharmacist, domain.RoleCashier, domain.RoleWholesaler, domain.RoleStockClerk}
	for i, role := range roles {
		token, err := jwthelper.GenerateToken([]byte(signingKey), uint(i+1), role, "test", jwthelper.DefaultTokenTTL)
		require.NoError(t, err)
		ts.tokens[role] = token
	}

	return ts
}

func (ts *testServer) do(role domain.Role, method, path string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := ts.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.server.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (ts *testServer) createProduct(body map[string]interface{}) domain.Product {
	ts.t.Helper()

	rr := ts.do(domain.RoleAdmin, http.MethodPost, "/api/v1/products", body)
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.Product](ts.t, rr)
}

func (ts *testServer) addStock(productID uint, quantity int, expiresInDays int, batchNumber string) domain.StockBatch {
	ts.t.Helper()

	rr := ts.do(domain.RoleStockClerk, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"product_id":   productID,
		"quantity":     quantity,
		"expiry_date":  time.Now().UTC().AddDate(0, 0, expiresInDays).Format("2006-01-02"),
		"batch_number": batchNumber,
		"supplier":     "Acme Pharma",
	})
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.StockBatch](ts.t, rr)
}

func TestHealthcheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("", http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do("", http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	ts.server.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwthelper.GenerateToken([]byte(signingKey), 99, domain.Role("janitor"), "", jwthelper.DefaultTokenTTL)
	require.NoError(t, err)
	ts.tokens["janitor"] = token
	rr = ts.do("janitor", http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCapabilities(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]interface{}{"name": "Paracetamol", "retail_price": "1.20"}

	rr := ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	p := ts.createProduct(body)

	rr = ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"product_id": p.ID, "quantity": 5, "expiry_date": "2030-01-01", "batch_number": "PCM-1",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(domain.RoleStockClerk, http.MethodPost, "/api/v1/dispense", map[string]interface{}{
		"inventory_id": p.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/1/sales", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestProducts(t *testing.T) {
	ts := newTestServer(t)

	p := ts.createProduct(map[string]interface{}{
		"name":            "Ibuprofen",
		"category":        "analgesic",
		"retail_price":    "2.50",
		"wholesale_price": "1.90",
	})
	assert.Equal(t, "Ibuprofen", p.Name)
	assert.Equal(t, 1, p.MinOrderQuantity)
	require.NotNil(t, p.WholesalePrice)
	assert.True(t, decimal.RequireFromString("1.90").Equal(*p.WholesalePrice))

	rr := ts.do(domain.RoleAdmin, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Ibuprofen", "retail_price": "3.00",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do(domain.RoleAdmin, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Aspirin", "retail_price": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(domain.RoleAdmin, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"retail_price": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.Product](t, rr), 1)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/404", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddStockValidation(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(map[string]interface{}{"name": "Amoxicillin", "retail_price": "4.00"})

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"zero quantity", map[string]interface{}{"product_id": p.ID, "quantity": 0, "expiry_date": "2030-01-01", "batch_number": "AMX-1"}, http.StatusBadRequest},
		{"fractional quantity", map[string]interface{}{"product_id": p.ID, "quantity": 1.5, "expiry_date": "2030-01-01", "batch_number": "AMX-1"}, http.StatusBadRequest},
		{"missing expiry", map[string]interface{}{"product_id": p.ID, "quantity": 3, "batch_number": "AMX-1"}, http.StatusBadRequest},
		{"bad batch number", map[string]interface{}{"product_id": p.ID, "quantity": 3, "expiry_date": "2030-01-01", "batch_number": "no digits"}, http.StatusBadRequest},
		{"unknown product", map[string]interface{}{"product_id": 999, "quantity": 3, "expiry_date": "2030-01-01", "batch_number": "AMX-1"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(domain.RoleStockClerk, http.MethodPost, "/api/v1/stock", tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	// past expiry is accepted and reported as expired
	ts.addStock(p.ID, 2, -5, "AMX-OLD")
	rr := ts.do(domain.RolePharmacist, http.MethodGet, "/api/v1/products/"+itoa(p.ID)+"/batches", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	batches := decode[struct {
		Batches []domain.ClassifiedBatch `json:"batches"`
	}](t, rr)
	require.Len(t, batches.Batches, 1)
	assert.Equal(t, domain.ExpiryExpired, batches.Batches[0].ExpiryStatus)
}

func TestDispenseFEFO(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(map[string]interface{}{"name": "Paracetamol", "retail_price": "1.20"})
	later := ts.addStock(p.ID, 30, 60, "PCM-B")
	soon := ts.addStock(p.ID, 50, 10, "PCM-A")

	rr := ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/dispense", map[string]interface{}{
		"inventory_id": p.ID, "quantity": 60,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decode[domain.DispenseResult](t, rr)
	assert.Equal(t, 60, result.QuantityDispensed)
	assert.Equal(t, 20, result.RemainingStock)
	assert.True(t, decimal.RequireFromString("72").Equal(result.TotalRevenue), result.TotalRevenue.String())
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, soon.ID, result.Allocations[0].BatchID)
	assert.Equal(t, later.ID, result.Allocations[1].BatchID)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/"+itoa(p.ID)+"/batches", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	batches := decode[struct {
		Batches []domain.ClassifiedBatch `json:"batches"`
	}](t, rr)
	require.Len(t, batches.Batches, 2)
	assert.Equal(t, 0, batches.Batches[0].Quantity)
	assert.Equal(t, 20, batches.Batches[1].Quantity)

	rr = ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/dispense", map[string]interface{}{
		"inventory_id": p.ID, "quantity": 21,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, decode[response.Err](t, rr).ErrorMsg, "insufficient stock")

	rr = ts.do(domain.RolePharmacist, http.MethodGet, "/api/v1/products/"+itoa(p.ID)+"/sales", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sales := decode[[]domain.Sale](t, rr)
	require.Len(t, sales, 1)
	assert.Equal(t, 60, sales[0].Quantity)
}

func TestDispenseInvalidInput(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(map[string]interface{}{"name": "Cetirizine", "retail_price": "0.80"})
	ts.addStock(p.ID, 10, 90, "CTZ-1")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"zero", `{"inventory_id": ` + itoa(p.ID) + `, "quantity": 0}`, http.StatusBadRequest},
		{"negative", `{"inventory_id": ` + itoa(p.ID) + `, "quantity": -1}`, http.StatusBadRequest},
		{"fractional", `{"inventory_id": ` + itoa(p.ID) + `, "quantity": 2.5}`, http.StatusBadRequest},
		{"text", `{"inventory_id": ` + itoa(p.ID) + `, "quantity": "abc"}`, http.StatusBadRequest},
		{"missing", `{"inventory_id": ` + itoa(p.ID) + `}`, http.StatusBadRequest},
		{"bad sale type", `{"inventory_id": ` + itoa(p.ID) + `, "quantity": 1, "sale_type": "barter"}`, http.StatusBadRequest},
		{"unknown product", `{"inventory_id": 4040, "quantity": 1}`, http.StatusNotFound},
		{"malformed json", `{"inventory_id": `, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/dispense", tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	rr := ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/"+itoa(p.ID)+"/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, decode[response.StockStatusResponse](t, rr).TotalQuantity, "failed requests leave stock untouched")
}

func TestDispenseWholesale(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(map[string]interface{}{
		"name": "Vitamin D", "retail_price": "0.50", "wholesale_price": "0.35", "min_order_quantity": 10,
	})
	ts.addStock(p.ID, 100, 300, "VTD-1")

	body := map[string]interface{}{"inventory_id": p.ID, "quantity": 10, "sale_type": "wholesale"}
	rr := ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/dispense", body)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(domain.RoleWholesaler, http.MethodPost, "/api/v1/dispense", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[domain.DispenseResult](t, rr)
	assert.True(t, decimal.RequireFromString("3.50").Equal(result.TotalRevenue))
	assert.Equal(t, domain.SaleTypeWholesale, result.SaleType)

	body["quantity"] = 5
	rr = ts.do(domain.RoleWholesaler, http.MethodPost, "/api/v1/dispense", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestConcurrentDispenseOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(map[string]interface{}{"name": "Aspirin", "retail_price": "0.25"})
	ts.addStock(p.ID, 12, 40, "ASP-1")

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[int]int)
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := ts.do(domain.RoleCashier, http.MethodPost, "/api/v1/dispense", map[string]interface{}{
				"inventory_id": p.ID, "quantity": 1,
			})
			mu.Lock()
			codes[rr.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 12, codes[http.StatusOK])
	assert.Equal(t, 8, codes[http.StatusConflict])
}

func TestStockStatusAndInventory(t *testing.T) {
	ts := newTestServer(t)
	para := ts.createProduct(map[string]interface{}{"name": "Paracetamol", "retail_price": "1.20"})
	ts.addStock(para.ID, 5, 7, "PCM-1")
	ibu := ts.createProduct(map[string]interface{}{"name": "Ibuprofen", "retail_price": "2.00"})
	ts.addStock(ibu.ID, 40, 120, "IBU-1")
	ts.createProduct(map[string]interface{}{"name": "Codeine", "retail_price": "9.00"})

	rr := ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/"+itoa(para.ID)+"/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	status := decode[response.StockStatusResponse](t, rr)
	assert.Equal(t, domain.StockLow, status.Status)
	assert.Equal(t, 10, status.LowStockThreshold)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/"+itoa(para.ID)+"/status?low_stock_threshold=4", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StockOK, decode[response.StockStatusResponse](t, rr).Status)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/"+itoa(para.ID)+"/status?low_stock_threshold=0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/products/"+itoa(para.ID)+"/status?low_stock_threshold=ten", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	inventory := decode[response.InventoryResponse](t, rr)
	require.Len(t, inventory.Products, 3)

	byName := make(map[string]domain.ProductInventory)
	for _, row := range inventory.Products {
		byName[row.Product.Name] = row
	}
	assert.Equal(t, domain.StockLow, byName["Paracetamol"].StockStatus)
	assert.Equal(t, domain.ExpiryExpiringSoon, byName["Paracetamol"].ExpiryStatus)
	assert.Equal(t, domain.StockOK, byName["Ibuprofen"].StockStatus)
	assert.Equal(t, domain.ExpiryGood, byName["Ibuprofen"].ExpiryStatus)
	assert.Equal(t, domain.StockOut, byName["Codeine"].StockStatus)

	rr = ts.do(domain.RoleCashier, http.MethodGet, "/api/v1/inventory?expiring_window_days=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestThresholdReload(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProduct(map[string]interface{}{"name": "Loratadine", "retail_price": "1.10"})
	ts.addStock(p.ID, 15, 200, "LOR-1")

	path := "/api/v1/products/" + itoa(p.ID) + "/status"
	rr := ts.do(domain.RoleCashier, http.MethodGet, path, nil)
	assert.Equal(t, domain.StockOK, decode[response.StockStatusResponse](t, rr).Status)

	require.NoError(t, ts.server.Classifier.SetThresholds(serviceThresholds(20, 30)))

	rr = ts.do(domain.RoleCashier, http.MethodGet, path, nil)
	assert.Equal(t, domain.StockLow, decode[response.StockStatusResponse](t, rr).Status)
}

func TestNewStorage(t *testing.T) {
	_, err := NewStorage(StoragePostgres, nil, time.Second)
	assert.Error(t, err)

	_, err = NewStorage("sqlite", nil, time.Second)
	assert.Error(t, err)

	s, err := NewStorage(StorageMemory, nil, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, s.Products)
}
