// Fincheck - Model Inference Metrics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fincheck

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/fincheck/internal/audit"
	"github.com/tomtom215/fincheck/internal/auth"
	"github.com/tomtom215/fincheck/internal/config"
	"github.com/tomtom215/fincheck/internal/database"
	"github.com/tomtom215/fincheck/internal/inference"
	"github.com/tomtom215/fincheck/internal/models"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256-signing"

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// zipHeader is a local file header signature.
var zipHeader = []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00")

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	results []*models.ModelResult
	nextID  int
	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return database.ErrUserExists
	}
	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.Username] = &u
	return nil
}

func (s *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *fakeStore) InsertResult(_ context.Context, result *models.ModelResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := *result
	r.ID = fmt.Sprintf("result-%d", s.nextID)
	s.results = append(s.results, &r)
	return r.ID, nil
}

func (s *fakeStore) GetResult(_ context.Context, id string) (*models.ModelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.ID == id {
			out := *r
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) owned(owner string) []*models.ModelResult {
	var out []*models.ModelResult
	for i := len(s.results) - 1; i >= 0; i-- {
		if owner == "" || s.results[i].Owner == owner {
			out = append(out, s.results[i])
		}
	}
	return out
}

func (s *fakeStore) ListResults(_ context.Context, owner string, limit, offset int) ([]models.ResultSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.owned(owner)
	var out []models.ResultSummary
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i].Summary())
	}
	return out, nil
}

func (s *fakeStore) CountResults(_ context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owned(owner)), nil
}

func (s *fakeStore) addResult(owner string, data map[string]map[string]any) string {
	id, _ := s.InsertResult(context.Background(), &models.ModelResult{ //nolint:errcheck
		Owner:     owner,
		Source:    models.SourceImage,
		NumImages: 1,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	})
	return id
}

// fakeBackend is a scripted Backend.
type fakeBackend struct {
	mu       sync.Mutex
	runErr   error
	metrics  inference.Metrics
	datasets []string
	health   error
	verify   *inference.VerifyResult
	rawText  string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		metrics: inference.Metrics{
			"baseline": {"latency_ms": 120.0, "confidence_percent": 90.0},
			"kd":       {"latency_ms": 80.0},
			"lrf":      {"latency_ms": 200.0, "confidence_percent": 70.0},
		},
	}
}

func (b *fakeBackend) Run(context.Context, []byte, string) (*inference.RunResult, error) {
	if b.runErr != nil {
		return nil, b.runErr
	}
	return &inference.RunResult{Models: b.metrics}, nil
}

func (b *fakeBackend) RunDataset(_ context.Context, req inference.DatasetRequest) (*inference.DatasetResult, error) {
	if b.runErr != nil {
		return nil, b.runErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if req.ZipFile != nil {
		b.datasets = append(b.datasets, inference.DatasetCustomZip)
		return &inference.DatasetResult{DatasetType: inference.DatasetCustomZip, NumImages: 3, Models: b.metrics}, nil
	}
	b.datasets = append(b.datasets, req.DatasetName)
	return &inference.DatasetResult{DatasetType: req.DatasetName, NumImages: 100, Models: b.metrics}, nil
}

func (b *fakeBackend) Verify(_ context.Context, _ []byte, _ string, rawText string) (*inference.VerifyResult, error) {
	if b.runErr != nil {
		return nil, b.runErr
	}
	b.rawText = rawText
	return b.verify, nil
}

func (b *fakeBackend) Health(context.Context) (*inference.HealthStatus, error) {
	if b.health != nil {
		return nil, b.health
	}
	return &inference.HealthStatus{Status: "ok", MNISTLoaded: true}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MaxUploadBytes:  1 << 20,
			DefaultPageSize: 20,
			MaxPageSize:     50,
		},
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			BcryptCost:        bcrypt.MinCost,
			RateLimitDisabled: true,
		},
		Inference: config.InferenceConfig{MaxConcurrentRuns: 2},
		Ranking: config.RankingConfig{
			Models:           []string{"baseline", "kd", "lrf"},
			MissingPolicy:    "last",
			RecommendPolicy:  "fastest",
			ConfidenceWeight: 0.5,
			LatencyWeight:    0.5,
		},
		Audit: config.AuditConfig{Enabled: true},
	}
}

type testEnv struct {
	t           *testing.T
	cfg         *config.Config
	store       *fakeStore
	backend     *fakeBackend
	jwt         *auth.JWTManager
	revocations *auth.MemoryRevocationStore
	auditStore  *audit.MemoryStore
	handler     http.Handler
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	env := &testEnv{
		t:           t,
		cfg:         cfg,
		store:       newFakeStore(),
		backend:     newFakeBackend(),
		jwt:         jwtManager,
		revocations: auth.NewMemoryRevocationStore(),
		auditStore:  audit.NewMemoryStore(100),
	}
	h := NewHandler(env.store, env.backend, cfg, jwtManager, env.revocations)
	if cfg.Audit.Enabled {
		auditLog := audit.NewLogger(env.auditStore, &audit.Config{Enabled: true, BufferSize: 100})
		t.Cleanup(func() { _ = auditLog.Close() })
		h.SetAuditLogger(auditLog)
	}
	router := NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)), auth.NewMiddleware(jwtManager, env.revocations))
	env.handler = router.Setup()
	return env
}

// waitForAudit polls until the async audit writer has stored n events.
func (e *testEnv) waitForAudit(n int) []audit.Event {
	e.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.auditStore.Len() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	events, _ := e.auditStore.Query(context.Background(), audit.QueryFilter{})
	if len(events) < n {
		e.t.Fatalf("audit events = %d, want at least %d", len(events), n)
	}
	return events
}

func (e *testEnv) token(username, role string) string {
	e.t.Helper()
	token, _, err := e.jwt.GenerateToken(username, role)
	if err != nil {
		e.t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path, token string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (e *testEnv) postJSON(path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, token)
}

type filePart struct {
	field, name string
	data        []byte
}

func newMultipartRequest(t *testing.T, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.Copy(w, bytes.NewReader(f.data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// envelope mirrors models.APIResponse with Data left raw.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v (body %s)", err, rec.Body.String())
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	env := decodeEnvelope(t, rec, nil)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != want {
		t.Fatalf("error code = %q, want %q", env.Error.Code, want)
	}
}

var errBackendDown = fmt.Errorf("%w: connection refused", inference.ErrBackendUnavailable)
