package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/salesdesk/backend/internal/application/identity"
	importapp "github.com/salesdesk/backend/internal/application/import"
	prefapp "github.com/salesdesk/backend/internal/application/preference"
	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/cache"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/salesdesk/backend/internal/infrastructure/persistence"
	"github.com/salesdesk/backend/internal/infrastructure/persistence/models"
	"github.com/salesdesk/backend/internal/interfaces/http/dto"
	"github.com/salesdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "password123"

// testServer wires the handlers against an in-memory sqlite database.
type testServer struct {
	t      *testing.T
	engine *gin.Engine
	jwt    *auth.JWTService
	users  *persistence.GormUserRepository
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                "test-secret-key-32-characters-long",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.RecordModel{}, &models.ImportHistoryModel{}))

	log := zap.NewNop()
	recordRepo := persistence.NewGormRecordRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	historyRepo := persistence.NewGormImportHistoryRepository(db)
	jwtService := auth.NewJWTService(testJWTConfig())
	revocations := auth.NewInMemoryRevocationList()

	records := recordapp.NewService(recordRepo, log)
	bulkService := recordapp.NewBulkService(recordRepo, records, log)
	imports := importapp.NewService(records, historyRepo, importapp.DefaultConfig(), log)
	exports := importapp.NewExportService(records, log)
	history := importapp.NewImportHistoryService(historyRepo)
	authService := appidentity.NewAuthService(userRepo, jwtService, revocations, log)
	userService := appidentity.NewUserService(userRepo, log)
	prefs := prefapp.NewService(cache.NewInMemoryPreferenceStore())

	recordHandler := NewRecordHandler(records)
	bulkHandler := NewBulkHandler(bulkService)
	importHandler := NewImportHandler(records, imports, exports, history, 1000)
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	prefHandler := NewPreferenceHandler(prefs)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:  jwtService,
		Revocations: revocations,
		SkipPaths:   []string{"/api/v1/auth/login"},
		Logger:      log,
	}))

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.GetCurrentUser)

	api.GET("/schemas", recordHandler.ListSchemas)
	api.GET("/records/:kind/schema", recordHandler.GetSchema)
	api.GET("/records/:kind", recordHandler.List)
	api.POST("/records/:kind", recordHandler.Create)
	api.GET("/records/:kind/export", importHandler.Export)
	api.POST("/records/:kind/batch", importHandler.Batch)
	api.POST("/records/:kind/import", importHandler.Import)
	api.POST("/records/:kind/bulk/delete", bulkHandler.Delete)
	api.PUT("/records/:kind/bulk/:mode", bulkHandler.Apply)
	api.GET("/records/:kind/:id", recordHandler.Get)
	api.PUT("/records/:kind/:id", recordHandler.Update)
	api.PUT("/records/:kind/:id/status", recordHandler.ChangeStatus)
	api.DELETE("/records/:kind/:id", recordHandler.Delete)

	api.GET("/imports", importHandler.ListHistory)
	api.GET("/imports/:id", importHandler.GetHistory)

	api.GET("/preferences/:kind", prefHandler.Get)
	api.PUT("/preferences/:kind", prefHandler.Update)
	api.POST("/preferences/:kind/pins/:id", prefHandler.TogglePin)

	api.GET("/users/agents", userHandler.ListAgents)
	api.POST("/users", middleware.RequireRoles(identity.RoleSuperAdmin, identity.RoleAdmin), userHandler.Create)

	return &testServer{t: t, engine: engine, jwt: jwtService, users: userRepo}
}

// addUser stores an active user and returns its session.
func (s *testServer) addUser(username, referenceID string, role identity.Role) identity.Session {
	s.t.Helper()
	user, err := identity.NewUser(username, testPassword, referenceID, role)
	require.NoError(s.t, err)
	user.SetHierarchy("MG-0001", "TS-0001")
	require.NoError(s.t, s.users.Create(context.Background(), user))
	return user.Session()
}

// token signs an access token for session.
func (s *testServer) token(session identity.Session) string {
	s.t.Helper()
	tok, err := s.jwt.GenerateAccessToken(session)
	require.NoError(s.t, err)
	return tok.AccessToken
}

// do sends a request; a non-nil body is encoded as JSON unless it is
// already an io.Reader.
func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if _, isReader := body.(io.Reader); body != nil && !isReader {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// envelope is dto.Response with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
