package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"easybook/config"
	"easybook/database/repository/memory"
	"easybook/handlers"
	"easybook/models"
	"easybook/services/analytics"
	"easybook/services/booking"
	"easybook/services/catalog"
	"easybook/services/maps"
	"easybook/services/notification"
	"easybook/services/payment"
	"easybook/services/provider"
	"easybook/services/storage"
	"easybook/services/user"
	"easybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.RateLimitRPS = 1000
	config.AppConfig.RateLimitBurst = 1000
	config.AppConfig.CORSOrigins = "*"
	os.Exit(m.Run())
}

type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Errors  []utils.FieldError `json:"errors"`
}

type server struct {
	router *gin.Engine
	users  *memory.UserRepo
}

func newServer(t *testing.T) *server {
	t.Helper()
	users := memory.NewUserRepo()
	services := memory.NewServiceRepo()
	bookings := memory.NewBookingRepo()
	inbox := memory.NewNotificationRepo()

	notifications, err := notification.NewDefaultNotificationService(users, inbox, nil, nil)
	require.NoError(t, err)

	userService := user.NewDefaultUserService(users, bookings)
	userService.HashCost = bcrypt.MinCost
	providerService, err := provider.NewDefaultProviderService(users, services, bookings, memory.NewAvailabilityRepo())
	require.NoError(t, err)

	hb := &handlers.HandlerBundle{
		UserRepo:      users,
		Auth:          handlers.NewAuthHandler(userService),
		Providers:     handlers.NewProviderHandler(providerService),
		Customers:     handlers.NewCustomerHandler(userService),
		Services:      handlers.NewServiceHandler(catalog.NewDefaultCatalogService(services, users)),
		Bookings:      handlers.NewBookingHandler(booking.NewDefaultBookingService(users, services, bookings, nil)),
		Payments:      handlers.NewPaymentHandler(payment.NewDefaultPaymentService(bookings, nil, map[string]payment.Gateway{})),
		Notifications: handlers.NewNotificationHandler(notifications),
		Maps:          handlers.NewMapsHandler(maps.NewGoogleMapsService("", time.Second, 0)),
		Admin:         handlers.NewAdminHandler(analytics.NewDefaultAnalyticsService(users, services, bookings, nil), userService),
		Uploads:       handlers.NewUploadHandler(storage.NewDefaultStorageService(nil)),
		Health:        &handlers.HealthHandler{},
	}

	r := gin.New()
	RegisterRoutes(r, hb)
	return &server{router: r, users: users}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *server) register(t *testing.T, req models.RegistrationRequest) (string, *models.User) {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", req)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp.Token, resp.User
}

func (s *server) admin(t *testing.T) string {
	t.Helper()
	require.NoError(t, s.users.Create(context.Background(), &models.User{
		ID:        "admin-1",
		FirstName: "Root",
		Email:     "root@example.com",
		Role:      models.RoleAdmin,
		Status:    models.AccountActive,
		IsActive:  true,
	}))
	token, err := utils.GenerateToken("admin-1", string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, raw json.RawMessage, key string, out interface{}) {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &wrapper))
	require.NoError(t, json.Unmarshal(wrapper[key], out))
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t)
	token, u := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleCustomer, u.Role)

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/register", "", models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestValidationErrorShape(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", models.RegistrationRequest{
		FirstName: "A",
		Email:     "not-an-email",
		Password:  "123",
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)

	fields := map[string]bool{}
	for _, f := range env.Errors {
		fields[f.Field] = true
	}
	assert.True(t, fields["email"], "%+v", env.Errors)
	assert.True(t, fields["password"], "%+v", env.Errors)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Request body is required", env.Message)
}

func TestAuthAndRoleGuards(t *testing.T) {
	s := newServer(t)
	code, _ := s.do(t, http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	customer, _ := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	code, _ = s.do(t, http.MethodGet, "/api/providers/dashboard", customer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodGet, "/api/admin/dashboard", customer, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/customers/dashboard", customer, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBookingFlow(t *testing.T) {
	s := newServer(t)
	providerToken, _ := s.register(t, models.RegistrationRequest{
		FirstName:       "Grace",
		LastName:        "Hopper",
		Email:           "grace@example.com",
		Password:        "secret123",
		Role:            models.RoleProvider,
		ServiceCategory: models.CategoryCleaning,
	})
	customerToken, _ := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})

	code, env := s.do(t, http.MethodPost, "/api/services", providerToken, models.ServiceInput{
		Name:        "Deep Clean",
		Description: "Whole apartment deep clean",
		Category:    models.CategoryCleaning,
		Price:       150,
		Duration:    "3 hours",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var svc models.Service
	decode(t, env.Data, "service", &svc)

	code, env = s.do(t, http.MethodGet, "/api/services/provider/mine", providerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/services/"+svc.ID, "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/services/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	code, env = s.do(t, http.MethodPost, "/api/bookings", customerToken, models.CreateBookingRequest{
		ServiceID:   svc.ID,
		BookingDate: date,
		TimeSlot:    "09:00-11:00",
		Address:     models.Address{Street: "1 Main St", City: "Springfield"},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var b models.Booking
	decode(t, env.Data, "booking", &b)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, 150.0, b.TotalAmount)

	// Customers cannot accept.
	code, _ = s.do(t, http.MethodPut, "/api/bookings/"+b.ID+"/accept", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, "/api/bookings/"+b.ID+"/accept", providerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	decode(t, env.Data, "booking", &b)
	assert.Equal(t, models.StatusAccepted, b.Status)

	code, _ = s.do(t, http.MethodPut, "/api/bookings/"+b.ID+"/accept", providerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/bookings", customerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var list []models.Booking
	decode(t, env.Data, "bookings", &list)
	assert.Len(t, list, 1)

	code, _ = s.do(t, http.MethodGet, "/api/bookings/missing", customerToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminDeactivatesUser(t *testing.T) {
	s := newServer(t)
	adminToken := s.admin(t)
	customerToken, customer := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})

	code, env := s.do(t, http.MethodPut, "/api/admin/users/"+customer.ID+"/status", adminToken, gin.H{"status": "suspended", "reason": "spam"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/auth/me", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Account is deactivated", env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/admin/analytics", adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUnconfiguredGateways(t *testing.T) {
	s := newServer(t)
	token, _ := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	code, _ := s.do(t, http.MethodPost, "/api/maps/geocode", token, models.GeocodeRequest{Address: "1 Main St"})
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestHugePageNumberIsClamped(t *testing.T) {
	s := newServer(t)
	token, _ := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})
	code, env := s.do(t, http.MethodGet, "/api/bookings?page=9000000000000000000&limit=50", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var list []models.Booking
	decode(t, env.Data, "bookings", &list)
	assert.Empty(t, list)

	code, _ = s.do(t, http.MethodGet, "/api/services?page=9000000000000000000", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCatalogCalendarAndInboxExtras(t *testing.T) {
	s := newServer(t)
	adminToken := s.admin(t)
	providerToken, _ := s.register(t, models.RegistrationRequest{
		FirstName:       "Grace",
		Email:           "grace@example.com",
		Password:        "secret123",
		Role:            models.RoleProvider,
		ServiceCategory: models.CategoryHVAC,
	})
	customerToken, customer := s.register(t, models.RegistrationRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "secret123",
	})

	code, env := s.do(t, http.MethodPost, "/api/services", providerToken, models.ServiceInput{
		Name:        "Furnace tune-up",
		Description: "Seasonal furnace inspection",
		Category:    models.CategoryHVAC,
		Price:       90,
		Duration:    "1 hour",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(t, http.MethodGet, "/api/services/category/hvac?sort=price", "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var listed []models.Service
	decode(t, env.Data, "services", &listed)
	assert.Len(t, listed, 1)
	code, _ = s.do(t, http.MethodGet, "/api/services/category/gardening", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/providers/availability", providerToken, gin.H{
		"date":      "2030-01-15",
		"timeSlots": []gin.H{{"start": "09:00", "end": "12:00", "isAvailable": true}},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Availability updated successfully", env.Message)
	code, env = s.do(t, http.MethodGet, "/api/providers/availability?startDate=2030-01-01&endDate=2030-01-31", providerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var calendar []models.ProviderAvailability
	decode(t, env.Data, "availability", &calendar)
	require.Len(t, calendar, 1)
	assert.True(t, calendar[0].IsWorkingDay)
	code, _ = s.do(t, http.MethodGet, "/api/providers/availability", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/providers/reviews?rating=5", providerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, _ = s.do(t, http.MethodGet, "/api/providers/reviews?rating=9", providerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/customers/booking-history?status=completed", customerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = s.do(t, http.MethodGet, "/api/customers/favorites", customerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	bulk := gin.H{"userIds": []string{customer.ID, "ghost"}, "title": "Maintenance", "body": "Down at 2am"}
	code, _ = s.do(t, http.MethodPost, "/api/notifications/bulk", providerToken, bulk)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(t, http.MethodPost, "/api/notifications/bulk", adminToken, bulk)
	require.Equal(t, http.StatusOK, code, env.Message)
	var result notification.BulkResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
}
