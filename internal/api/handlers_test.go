package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/api"
	"github.com/LightsoftTeam/baldoria-backend/internal/clock"
	"github.com/LightsoftTeam/baldoria-backend/internal/core"
	"github.com/LightsoftTeam/baldoria-backend/internal/db"
	"github.com/LightsoftTeam/baldoria-backend/internal/middleware"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

const offset = -5 * time.Hour

type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	repo   *db.MemoryUserRepository
	clock  *clock.FixedClock
}

func (s *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(api.RegisterValidators())
}

func (s *HandlerTestSuite) SetupTest() {
	s.repo = db.NewMemoryUserRepository()
	s.clock = clock.NewFixedClock(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))

	logger := zap.NewNop()
	audit := core.NewAuditService(db.NewMemoryAuditRepository())
	evaluator := core.NewEvaluator(s.repo, s.clock, offset, time.UTC, logger)
	users := core.NewUserService(s.repo, audit, s.clock, offset, logger)
	reservations := core.NewReservationService(s.repo, evaluator, audit, logger)

	s.router = gin.New()
	api.SetupRoutes(s.router, logger, users, reservations, nil)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func validUser(doc string) map[string]any {
	return map[string]any{
		"firstName":      "Rosa",
		"lastName":       "Huaman",
		"documentType":   "dni",
		"documentNumber": doc,
		"email":          doc + "@mail.com",
		"phoneCode":      "+51",
		"phoneNumber":    "987654321",
		"birthdate":      "1990-05-20",
	}
}

func (s *HandlerTestSuite) createUser(doc string) string {
	rec := s.do(http.MethodPost, "/api/users", validUser(doc))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var u map[string]any
	s.decode(rec, &u)
	return u["id"].(string)
}

func (s *HandlerTestSuite) addReservation(userID, enterprise, date string) (int, map[string]any) {
	rec := s.do(http.MethodPost, "/api/users/"+userID+"/reservations", map[string]any{"enterprise": enterprise, "date": date})
	var body map[string]any
	s.decode(rec, &body)
	return rec.Code, body
}

func (s *HandlerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestCreateUser() {
	rec := s.do(http.MethodPost, "/api/users", validUser("44556677"))
	s.Require().Equal(http.StatusCreated, rec.Code)

	var u map[string]any
	s.decode(rec, &u)
	s.NotEmpty(u["id"])
	s.Equal("client", u["role"])
	s.Equal([]any{}, u["reservations"])
	s.NotContains(u, "password")
	s.NotContains(u, "reservationIds")
}

func (s *HandlerTestSuite) TestCreateUser_Validation() {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{name: "missing first name", mutate: func(m map[string]any) { delete(m, "firstName") }},
		{name: "bad email", mutate: func(m map[string]any) { m["email"] = "not-an-email" }},
		{name: "unknown document type", mutate: func(m map[string]any) { m["documentType"] = "ruc" }},
		{name: "bad birthdate", mutate: func(m map[string]any) { m["birthdate"] = "20/05/1990" }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			body := validUser("12345678")
			tt.mutate(body)
			rec := s.do(http.MethodPost, "/api/users", body)
			s.Equal(http.StatusBadRequest, rec.Code)
		})
	}
}

func (s *HandlerTestSuite) TestAddReservation_CreatedThenOK() {
	userID := s.createUser("10000001")

	code, body := s.addReservation(userID, "lov", "2024-03-01")
	s.Equal(http.StatusCreated, code)
	s.Equal(true, body["isNew"])
	first := body["reservation"].(map[string]any)
	s.Equal(false, first["needParking"])

	code, body = s.addReservation(userID, "lov", "2024-03-01")
	s.Equal(http.StatusOK, code)
	s.Equal(false, body["isNew"])
	s.Equal(first["id"], body["reservation"].(map[string]any)["id"])

	rec := s.do(http.MethodGet, "/api/users/by-document/dni/10000001", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var u map[string]any
	s.decode(rec, &u)
	s.EqualValues(1, u["lovCount"])
	s.EqualValues(0, u["baldoriaCount"])
}

func (s *HandlerTestSuite) TestAddReservation_Errors() {
	code, _ := s.addReservation("missing", "lov", "2024-03-01")
	s.Equal(http.StatusNotFound, code)

	userID := s.createUser("10000002")
	code, _ = s.addReservation(userID, "disco", "2024-03-01")
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.addReservation(userID, "lov", "tomorrow")
	s.Equal(http.StatusBadRequest, code)
}

func (s *HandlerTestSuite) TestGetReservations() {
	userID := s.createUser("10000003")
	s.addReservation(userID, "lov", "2024-03-01")
	s.addReservation(userID, "baldoria", "2024-03-07")

	rec := s.do(http.MethodGet, "/api/users/"+userID+"/reservations", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list []models.Reservation
	s.decode(rec, &list)
	s.Require().Len(list, 2)
	s.Equal(models.EnterpriseBaldoria, list[0].Enterprise)

	rec = s.do(http.MethodGet, "/api/users/missing/reservations", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestGetClientByDocument_Errors() {
	rec := s.do(http.MethodGet, "/api/users/by-document/dni/00000000", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/by-document/ruc/00000000", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestUseReservation() {
	userID := s.createUser("10000004")
	_, body := s.addReservation(userID, "baldoria", "2024-03-01")
	todayID := body["reservation"].(map[string]any)["id"].(string)
	_, body = s.addReservation(userID, "baldoria", "2024-03-02")
	tomorrowID := body["reservation"].(map[string]any)["id"].(string)

	rec := s.do(http.MethodPost, "/api/reservations/use", map[string]any{"id": todayID})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var used api.UseReservationResponse
	s.decode(rec, &used)
	s.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), used.UsedAt)

	rec = s.do(http.MethodPost, "/api/reservations/use", map[string]any{"id": todayID})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"error":"ALREADY_USED","message":"Reservation already used on 01/03/2024 10:00"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/reservations/use", map[string]any{"id": tomorrowID})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"error":"DATE_NOT_VALID","message":"Reservation is only valid on 02/03/2024"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/reservations/use", map[string]any{"id": "unknown"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/reservations/use", map[string]any{})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestListReservations() {
	a := s.createUser("10000005")
	b := s.createUser("10000006")
	s.addReservation(a, "lov", "2024-03-01")
	s.addReservation(b, "lov", "2024-03-01")
	s.addReservation(b, "baldoria", "2024-03-01")

	rec := s.do(http.MethodGet, "/api/reservations?date=2024-03-01&enterprise=lov", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var rows []map[string]any
	s.decode(rec, &rows)
	s.Require().Len(rows, 2)
	user := rows[0]["user"].(map[string]any)
	s.NotContains(user, "password")
	s.NotContains(user, "reservations")

	rec = s.do(http.MethodGet, "/api/reservations?date=2024-03-01", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/api/reservations?date=2024-03-01&enterprise=disco", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestVisits() {
	userID := s.createUser("10000007")
	_, body := s.addReservation(userID, "baldoria", "2024-03-01")
	s.addReservation(userID, "baldoria", "2024-03-02")
	s.addReservation(userID, "baldoria", "2024-03-03")
	s.addReservation(userID, "lov", "2024-03-02")
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/reservations/use",
		map[string]any{"id": body["reservation"].(map[string]any)["id"]}).Code)

	rec := s.do(http.MethodGet, "/api/reservations/visits?from=2024-03-01&to=2024-03-31", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var rows []models.UserVisits
	s.decode(rec, &rows)
	s.Require().Len(rows, 1)
	s.Equal(3, rows[0].BaldoriaReservations)
	s.Equal(1, rows[0].LovReservations)
	s.Equal(1, rows[0].UsedBaldoriaReservations)
	s.Equal(0, rows[0].UsedLovReservations)

	rec = s.do(http.MethodGet, "/api/reservations/visits?from=2024-03-31&to=2024-03-01", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/api/reservations/visits?from=2024-03-01", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestQRInfo() {
	userID := s.createUser("10000008")
	_, body := s.addReservation(userID, "lov", "2024-03-01")
	id := body["reservation"].(map[string]any)["id"].(string)

	rec := s.do(http.MethodGet, "/api/reservations/"+id+"/qr-info", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var info map[string]any
	s.decode(rec, &info)
	s.Equal(map[string]any{"isValid": true, "error": nil}, info["reservationsState"])
	s.Equal(userID, info["user"].(map[string]any)["id"])
	s.Equal(id, info["reservation"].(map[string]any)["id"])

	rec = s.do(http.MethodGet, "/api/reservations/unknown/qr-info", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestListUsers() {
	for i := 0; i < 12; i++ {
		s.createUser(fmt.Sprintf("2000%04d", i))
		s.clock.Add(time.Minute)
	}

	rec := s.do(http.MethodGet, "/api/users?page=2&limit=10", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var resp models.UserListResponse
	s.decode(rec, &resp)
	s.Len(resp.Data, 2)
	s.Equal(models.PageMeta{Page: 2, Limit: 10, Total: 12}, resp.Meta)
	s.Equal(map[models.Enterprise]int{models.EnterpriseBaldoria: 0, models.EnterpriseLov: 0}, resp.Data[0].ReservationsInfo)

	rec = s.do(http.MethodGet, "/api/users", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &resp)
	s.Equal(models.PageMeta{Page: 1, Limit: 10, Total: 12}, resp.Meta)

	rec = s.do(http.MethodGet, "/api/users?page=100000&limit=10", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &resp)
	s.Empty(resp.Data)
	s.Equal(12, resp.Meta.Total)

	for _, q := range []string{"page=-1", "page=100001", "page=9223372036854775807", "limit=500", "sortBy=password", "sort=up"} {
		rec = s.do(http.MethodGet, "/api/users?"+q, nil)
		s.Equal(http.StatusBadRequest, rec.Code, q)
	}
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateClient(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, params models.ListUsersParams) (*models.UserListResponse, error) {
	args := m.Called(ctx, params)
	r, _ := args.Get(0).(*models.UserListResponse)
	return r, args.Error(1)
}

func (m *MockUserService) GetClientByDocument(ctx context.Context, documentType models.DocumentType, documentNumber string) (*models.User, error) {
	args := m.Called(ctx, documentType, documentNumber)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserService) GetReservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]models.Reservation)
	return r, args.Error(1)
}

func (m *MockUserService) AddReservation(ctx context.Context, userID string, req models.AddReservationRequest) (*models.Reservation, bool, error) {
	args := m.Called(ctx, userID, req)
	r, _ := args.Get(0).(*models.Reservation)
	return r, args.Bool(1), args.Error(2)
}

func TestUserHandler_RepositoryFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(MockUserService)
	svc.On("GetReservations", mock.Anything, "u1").Return(nil, errors.New("firestore unavailable"))

	router := gin.New()
	h := api.NewUserHandler(svc, zap.NewNop())
	router.GET("/users/:id/reservations", h.GetReservations)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1/reservations", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	svc.AssertExpectations(t)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	tok, _ := args.Get(0).(*auth.Token)
	return tok, args.Error(1)
}

func TestRoutes_AuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if err := api.RegisterValidators(); err != nil {
		t.Fatal(err)
	}

	repo := db.NewMemoryUserRepository()
	admin := &models.User{FirstName: "Ana", Email: "boss@mail.com", Password: "hash", Role: models.RoleAdmin}
	if err := repo.Create(context.Background(), admin); err != nil {
		t.Fatal(err)
	}

	verifier := new(MockVerifier)
	verifier.On("VerifyIDToken", mock.Anything, "admin-token").
		Return(&auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "boss@mail.com"}}, nil)

	logger := zap.NewNop()
	c := clock.NewFixedClock(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))
	audit := core.NewAuditService(db.NewMemoryAuditRepository())
	users := core.NewUserService(repo, audit, c, offset, logger)
	reservations := core.NewReservationService(repo, core.NewEvaluator(repo, c, offset, time.UTC, logger), audit, logger)

	router := gin.New()
	api.SetupRoutes(router, logger, users, reservations, middleware.NewAuthMiddleware(verifier, repo, logger))

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "me without token", method: http.MethodGet, path: "/api/auth/me", wantStatus: http.StatusUnauthorized},
		{name: "me as admin", method: http.MethodGet, path: "/api/auth/me", token: "admin-token", wantStatus: http.StatusOK},
		{name: "list users without token", method: http.MethodGet, path: "/api/users", wantStatus: http.StatusUnauthorized},
		{name: "list users as admin", method: http.MethodGet, path: "/api/users", token: "admin-token", wantStatus: http.StatusOK},
		{name: "visits without token", method: http.MethodGet, path: "/api/reservations/visits?from=2024-03-01&to=2024-03-02", wantStatus: http.StatusUnauthorized},
		{name: "client lookup stays public", method: http.MethodGet, path: "/api/users/by-document/dni/00000000", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.method, tt.path, tt.token)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	rec := serve(http.MethodGet, "/api/auth/me", "admin-token")
	var profile map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile["id"] != admin.ID || profile["role"] != "admin" {
		t.Fatalf("unexpected profile: %v", profile)
	}
	if _, leaked := profile["password"]; leaked {
		t.Fatal("password must not be serialized")
	}
}
