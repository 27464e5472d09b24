package datasource

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// fakeServer is an in-memory stand-in for the REST service.
type fakeServer struct {
	t *testing.T

	mu        sync.Mutex
	records   []Record
	bare      bool
	listHook  func(c *gin.Context) bool
	bulkCalls int
	batches   [][]map[string]any
	lastBulk  map[string]any
	failBulk  bool
	token     string
	schema    Schema
}

func newFakeServer(t *testing.T, n int) (*fakeServer, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := &fakeServer{t: t, token: "secret"}
	for i := 1; i <= n; i++ {
		fs.records = append(fs.records, Record{
			"id":     fmt.Sprintf("r%02d", i),
			"fields": map[string]any{"name": fmt.Sprintf("Record %d", i), "status": "Open"},
		})
	}
	fs.schema = Schema{
		Kind:          "accounts",
		ImportColumns: []string{"name", "email"},
		ImportConsts:  []string{"manager", "tsm"},
	}

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.POST("/auth/login", fs.login)
	authed := api.Group("", fs.auth)
	authed.GET("/records/:kind", fs.list)
	authed.GET("/records/:kind/schema", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": fs.schema})
	})
	authed.POST("/records/:kind", fs.create)
	authed.POST("/records/:kind/batch", fs.batch)
	authed.POST("/records/:kind/bulk/delete", fs.bulkDelete)
	authed.PUT("/records/:kind/bulk/:mode", fs.bulkApply)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return fs, New(srv.URL, WithToken(fs.token))
}

func (fs *fakeServer) auth(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+fs.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Missing token"},
		})
		return
	}
	c.Next()
}

func (fs *fakeServer) login(c *gin.Context) {
	var body map[string]string
	_ = c.ShouldBindJSON(&body)
	if body["password"] != "password123" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_CREDENTIALS", "message": "Invalid username or password"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"access_token": fs.token, "token_type": "Bearer"}})
}

func (fs *fakeServer) list(c *gin.Context) {
	if fs.listHook != nil && fs.listHook(c) {
		return
	}
	fs.mu.Lock()
	records := append([]Record(nil), fs.records...)
	bare := fs.bare
	fs.mu.Unlock()
	if bare {
		c.JSON(http.StatusOK, records)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "meta": gin.H{"total": len(records)}})
}

func (fs *fakeServer) create(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_JSON", "message": err.Error()}})
		return
	}
	fs.mu.Lock()
	rec := Record{"id": fmt.Sprintf("r%02d", len(fs.records)+1), "fields": fields}
	fs.records = append(fs.records, rec)
	fs.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
		"record":  rec,
		"notice":  gin.H{"level": "info", "message": "Record saved"},
		"forward": gin.H{"attempted": false, "ok": false},
	}})
}

func (fs *fakeServer) batch(c *gin.Context) {
	var rows []map[string]any
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_JSON", "message": err.Error()}})
		return
	}
	fs.mu.Lock()
	fs.batches = append(fs.batches, rows)
	for _, row := range rows {
		fs.records = append(fs.records, Record{"id": fmt.Sprintf("r%02d", len(fs.records)+1), "fields": row})
	}
	fs.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"inserted": len(rows)}})
}

func (fs *fakeServer) bulkDelete(c *gin.Context) {
	var body struct {
		IDs       []string `json:"ids"`
		Confirmed bool     `json:"confirmed"`
	}
	_ = c.ShouldBindJSON(&body)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.bulkCalls++
	if !body.Confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "VALIDATION_REQUIRED", "message": "confirm"}})
		return
	}
	if fs.failBulk {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": gin.H{"code": "FORBIDDEN", "message": "Access denied"}})
		return
	}
	gone := toSet(body.IDs)
	kept := fs.records[:0]
	for _, r := range fs.records {
		if _, ok := gone[r.ID()]; !ok {
			kept = append(kept, r)
		}
	}
	fs.records = kept
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"mode": "delete", "affected": body.IDs}})
}

func (fs *fakeServer) bulkApply(c *gin.Context) {
	var body map[string]any
	_ = c.ShouldBindJSON(&body)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.bulkCalls++
	fs.lastBulk = body
	if fs.failBulk {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": gin.H{"code": "FORBIDDEN", "message": "Access denied"}})
		return
	}
	ids, _ := body["ids"].([]any)
	value, _ := body["value"].(string)
	patched := make([]Record, 0, len(ids))
	affected := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, _ := raw.(string)
		patched = append(patched, Record{"id": id, "fields": map[string]any{"status": value}})
		affected = append(affected, id)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"mode":     c.Param("mode"),
		"affected": affected,
		"records":  patched,
	}})
}
