package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"tbs/src/db"
	"tbs/src/middlewares"
	"tbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	Token string
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func generateJWT(userId uint) (string, error) {
	claims := types.Claims{
		Username: "Test User",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userId)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("phoneno", phoneValidatorFunc)
	}

	token, err := generateJWT(7)
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	s.Token = token
}

func (s *TestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) expectAuthUser(userId uint) {
	now := time.Now()
	s.Mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "role", "created_at", "updated_at", "deleted_at"}).
			AddRow(userId, "Test User", "someone@example.com", "+4740123456", "user", now, now, nil))
}

func (s *TestSuite) authorizedRouter() *gin.Engine {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	bookingHandlers(apiv1)
	return router
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/travel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestSearchTravel() {
	router := setupRouter()
	publicRoutes(router)

	departure := time.Now().Add(5 * 24 * time.Hour)
	s.Run("Should return matching travel options with 200 status", func() {
		now := time.Now()
		s.Mock.ExpectQuery(`SELECT \* FROM "travel_options"`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "travel_id", "type", "source", "destination",
				"departure_time", "arrival_time", "price", "total_seats", "available_seats",
				"created_at", "updated_at", "deleted_at",
			}).AddRow(
				1, "FL1A2B3C", "flight", "Oslo", "Bergen",
				departure, departure.Add(time.Hour), "299.99", 50, 48,
				now, now, nil,
			))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/travel?source=oslo&type=flight", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(rbytes)
		assert.Equal(s.T(), int64(1), gjson.Get(sjson, "count").Int())
		assert.Equal(s.T(), "FL1A2B3C", gjson.Get(sjson, "data.0.travel_id").String())
		assert.True(s.T(), gjson.Get(sjson, "data.0.available").Bool())
	})

	s.Run("Should reject a malformed departure date", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/travel?departure_date=tomorrow", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestGetTravelNotFound() {
	router := setupRouter()
	publicRoutes(router)

	s.Mock.ExpectQuery(`SELECT \* FROM "travel_options"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/travel/NOPE0000", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestBookingsRequireAuth() {
	router := s.authorizedRouter()

	s.Run("Should reject a request without credentials", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject a bare Bearer header without a token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject an empty token after the scheme", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer ")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})
}

func (s *TestSuite) TestErrorStatusMapping() {
	assert.Equal(s.T(), 400, errorStatus(types.ValidationError{Field: "seats", Msg: "out of range"}))
	assert.Equal(s.T(), 404, errorStatus(types.NotFoundError{Resource: "booking"}))
	assert.Equal(s.T(), 409, errorStatus(types.ErrInsufficientCapacity))
	assert.Equal(s.T(), 409, errorStatus(types.ErrAlreadyCancelled))
	assert.Equal(s.T(), 409, errorStatus(types.ConflictError{Resource: "travel option"}))
	assert.Equal(s.T(), 422, errorStatus(types.ErrNotAvailable))
	assert.Equal(s.T(), 422, errorStatus(types.ErrCancellationWindowClosed))
	assert.Equal(s.T(), 500, errorStatus(types.StorageError{}))
}

func (s *TestSuite) TestCreateBookingEndpoint() {
	router := s.authorizedRouter()

	departure := time.Now().Add(7 * 24 * time.Hour)
	now := time.Now()

	s.expectAuthUser(7)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT \* FROM "travel_options" WHERE travel_id = .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "travel_id", "type", "source", "destination",
			"departure_time", "arrival_time", "price", "total_seats", "available_seats",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(
			1, "FL1A2B3C", "flight", "Oslo", "Bergen",
			departure, departure.Add(time.Hour), "299.99", 50, 50,
			now, now, nil,
		))
	s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectExec(`UPDATE "travel_options" SET "available_seats"=available_seats \+ .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	jbody := map[string]any{
		"travel_id":       "FL1A2B3C",
		"seats":           2,
		"passenger_names": []string{"Ada Lovelace", "Alan Turing"},
		"contact_email":   "someone@example.com",
		"contact_phone":   "+4740123456",
	}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 201, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.True(s.T(), strings.HasPrefix(gjson.Get(sjson, "data.booking_id").String(), "BK"))
	assert.Equal(s.T(), "599.98", gjson.Get(sjson, "data.total_price").String())
	assert.Equal(s.T(), "confirmed", gjson.Get(sjson, "data.status").String())

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingEndpointValidation() {
	router := s.authorizedRouter()

	s.expectAuthUser(7)

	// Three passenger names against two seats never reaches the database.
	jbody := map[string]any{
		"travel_id":       "FL1A2B3C",
		"seats":           2,
		"passenger_names": []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"},
		"contact_email":   "someone@example.com",
		"contact_phone":   "+4740123456",
	}
	sbody, _ := json.Marshal(&jbody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(rbytes), "error").String()
	assert.NotEmpty(s.T(), errMsg)

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCancelBookingEndpointConflict() {
	router := s.authorizedRouter()

	now := time.Now()
	s.expectAuthUser(7)
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE booking_id = .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "user_id", "travel_option_id", "seats", "total_price",
			"status", "passenger_names", "contact_email", "contact_phone",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(
			9, "BKDEADBEEF", 7, 4, 2, "599.98",
			"cancelled", "Ada Lovelace,Alan Turing", "someone@example.com", "+4740123456",
			now, now, nil,
		))
	s.Mock.ExpectRollback()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/BKDEADBEEF/cancel", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestListBookingsEndpoint() {
	router := s.authorizedRouter()

	now := time.Now()
	s.expectAuthUser(7)
	s.Mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "user_id", "travel_option_id", "seats", "total_price",
			"status", "passenger_names", "contact_email", "contact_phone",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(
			9, "BKDEADBEEF", 7, 4, 2, "599.98",
			"confirmed", "Ada Lovelace,Alan Turing", "someone@example.com", "+4740123456",
			now, now, nil,
		))
	s.Mock.ExpectQuery(`SELECT \* FROM "travel_options"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "travel_id", "type", "source", "destination",
			"departure_time", "arrival_time", "price", "total_seats", "available_seats",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(
			4, "FL1A2B3C", "flight", "Oslo", "Bergen",
			now.Add(7*24*time.Hour), now.Add(7*24*time.Hour+time.Hour), "299.99", 50, 48,
			now, now, nil,
		))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.Equal(s.T(), int64(1), gjson.Get(sjson, "count").Int())
	assert.Equal(s.T(), "FL1A2B3C", gjson.Get(sjson, "data.0.travel.travel_id").String())

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
