package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hostel-leave-api/internal/adapters/http/middleware"
	"hostel-leave-api/internal/adapters/persistence/models"
	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/pkg/jwt"
	"hostel-leave-api/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
)

type captureMailer struct {
	resetURL string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _, _, resetURL string) error {
	m.resetURL = resetURL
	return nil
}

type testServer struct {
	app    *fiber.App
	store  *repositories.Store
	tokens *jwt.HMACIssuer
	mailer *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppMode:     "dev",
		FrontendURL: "http://localhost:5173",
		Cookie: config.CookieConfig{
			Name:     "access_token",
			SameSite: fiber.CookieSameSiteLaxMode,
		},
		RateLimit:     config.RateLimitConfig{Enabled: false},
		ResetTokenTTL: 15 * time.Minute,
	}

	store := repositories.NewMemoryStore()
	tokens := jwt.NewHMACIssuer("test-secret", "hostel-leave-api", 7*24*time.Hour)
	mailer := &captureMailer{}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, &Dependencies{Store: store, Tokens: tokens, Mailer: mailer}, cfg)

	return &testServer{app: app, store: store, tokens: tokens, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}, *http.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, map[string]interface{}, *http.Response) {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", req.Method, req.URL.Path, err, raw)
		}
	}
	return resp.StatusCode, out, resp
}

func (s *testServer) createAdmin(t *testing.T) string {
	t.Helper()

	hash, err := password.Hash("adminpass1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &models.User{Name: "Warden", Email: "warden@x.com", Password: hash, Role: "admin"}
	if err := s.store.Users.Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	status, body, _ := s.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "warden@x.com", "password": "adminpass1"}, "")
	if status != http.StatusOK {
		t.Fatalf("admin login status = %d (%v)", status, body)
	}
	return body["token"].(string)
}

func (s *testServer) register(t *testing.T, name, email string) (token, id string) {
	t.Helper()

	status, body, _ := s.do(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"name":     name,
		"email":    email,
		"phone":    "9999999999",
		"password": "secret12",
	}, "")
	if status != http.StatusCreated {
		t.Fatalf("register status = %d (%v)", status, body)
	}
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["_id"].(string)
}

func leaveBody() fiber.Map {
	return fiber.Map{
		"studentId":     "CS-2021-014",
		"name":          "Alice",
		"roomNumber":    "B-204",
		"leaveType":     "Sick",
		"destination":   "Home",
		"contactNumber": "9999999999",
		"startDate":     "2024-01-10",
		"endDate":       "2024-01-12",
		"reason":        "Fever",
	}
}

func TestLeaveLifecycleScenario(t *testing.T) {
	s := newTestServer(t)

	// Register
	status, body, resp := s.do(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"name":     "Alice",
		"email":    "alice@x.com",
		"phone":    "9999999999",
		"password": "secret12",
	}, "")
	if status != http.StatusCreated {
		t.Fatalf("register status = %d (%v)", status, body)
	}
	user := body["user"].(map[string]interface{})
	if user["role"] != "student" {
		t.Fatalf("role = %v, want student", user["role"])
	}
	if _, ok := user["password"]; ok {
		t.Fatalf("password leaked in response")
	}
	if len(resp.Cookies()) != 0 {
		t.Fatalf("register should not set a cookie")
	}

	// Login
	status, body, resp = s.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "alice@x.com", "password": "secret12"}, "")
	if status != http.StatusOK {
		t.Fatalf("login status = %d (%v)", status, body)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("login cookie missing or not HttpOnly: %+v", resp.Cookies())
	}
	token := body["token"].(string)
	claims, err := s.tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Role != "student" {
		t.Fatalf("claims role = %q", claims.Role)
	}

	// Apply using the cookie
	b, _ := json.Marshal(leaveBody())
	req := httptest.NewRequest(http.MethodPost, "/api/leaves/apply", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: cookie.Value})
	status, body, _ = s.send(t, req)
	if status != http.StatusCreated {
		t.Fatalf("apply status = %d (%v)", status, body)
	}
	leave := body["leave"].(map[string]interface{})
	if leave["status"] != "Pending" {
		t.Fatalf("leave status = %v", leave["status"])
	}
	leaveID := leave["_id"].(string)

	// Student cannot decide
	status, _, _ = s.do(t, http.MethodPut, "/api/leaves/"+leaveID+"/status", fiber.Map{"status": "Approved"}, token)
	if status != http.StatusForbidden {
		t.Fatalf("student status update = %d, want 403", status)
	}

	// Admin approves
	adminToken := s.createAdmin(t)
	status, body, _ = s.do(t, http.MethodPut, "/api/leaves/"+leaveID+"/status", fiber.Map{"status": "Approved"}, adminToken)
	if status != http.StatusOK {
		t.Fatalf("approve status = %d (%v)", status, body)
	}
	if got := body["leave"].(map[string]interface{})["status"]; got != "Approved" {
		t.Fatalf("approved leave status = %v", got)
	}

	// Owner sees the decision
	status, body, _ = s.do(t, http.MethodGet, "/api/leaves/my-leaves", nil, token)
	if status != http.StatusOK {
		t.Fatalf("my-leaves status = %d (%v)", status, body)
	}
	leaves := body["leaves"].([]interface{})
	if len(leaves) != 1 || leaves[0].(map[string]interface{})["status"] != "Approved" {
		t.Fatalf("my-leaves = %v", leaves)
	}

	// Fetch by id round-trips the stored fields
	status, body, _ = s.do(t, http.MethodGet, "/api/leaves/"+leaveID, nil, token)
	if status != http.StatusOK {
		t.Fatalf("get leave status = %d (%v)", status, body)
	}
	got := body["leave"].(map[string]interface{})
	if got["leaveType"] != "Sick Leave" || got["reason"] != "Fever" {
		t.Fatalf("get leave = %v", got)
	}
}

func TestPasswordResetScenario(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Alice", "alice@x.com")

	status, body, _ := s.do(t, http.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": "alice@x.com"}, "")
	if status != http.StatusOK {
		t.Fatalf("forgot status = %d (%v)", status, body)
	}
	if !strings.HasPrefix(s.mailer.resetURL, "http://localhost:5173/reset-password/") {
		t.Fatalf("reset url = %q", s.mailer.resetURL)
	}
	resetToken := s.mailer.resetURL[strings.LastIndex(s.mailer.resetURL, "/")+1:]

	status, body, _ = s.do(t, http.MethodPost, "/api/auth/reset-password/"+resetToken, fiber.Map{"password": "NewPass123"}, "")
	if status != http.StatusOK {
		t.Fatalf("reset status = %d (%v)", status, body)
	}

	status, _, _ = s.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "alice@x.com", "password": "secret12"}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("old password login = %d, want 401", status)
	}
	status, _, _ = s.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "alice@x.com", "password": "NewPass123"}, "")
	if status != http.StatusOK {
		t.Fatalf("new password login = %d, want 200", status)
	}

	// Token is single use
	status, _, _ = s.do(t, http.MethodPost, "/api/auth/reset-password/"+resetToken, fiber.Map{"password": "Another123"}, "")
	if status != http.StatusBadRequest {
		t.Fatalf("reused token = %d, want 400", status)
	}
}

func TestAuthorizationRules(t *testing.T) {
	s := newTestServer(t)
	aliceToken, aliceID := s.register(t, "Alice", "alice@x.com")
	bobToken, _ := s.register(t, "Bob", "bob@x.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"admin summary as student", http.MethodGet, "/api/leaves/admin-summary", aliceToken, http.StatusForbidden},
		{"all leaves as student", http.MethodGet, "/api/leaves", aliceToken, http.StatusForbidden},
		{"export as student", http.MethodGet, "/api/leaves/export", aliceToken, http.StatusForbidden},
		{"my leaves anonymous", http.MethodGet, "/api/leaves/my-leaves", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/user/me", "not-a-token", http.StatusUnauthorized},
		{"own profile", http.MethodGet, "/api/user/get-user/" + aliceID, aliceToken, http.StatusOK},
		{"someone else's profile", http.MethodGet, "/api/user/get-user/" + aliceID, bobToken, http.StatusForbidden},
		{"logout anonymous", http.MethodGet, "/api/auth/logout", "", http.StatusOK},
		{"health", http.MethodGet, "/api/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := s.do(t, tt.method, tt.path, nil, tt.token)
			if status != tt.want {
				t.Fatalf("status = %d, want %d (%v)", status, tt.want, body)
			}
			if status >= 400 && body["success"] != false {
				t.Fatalf("error envelope = %v", body)
			}
		})
	}
}

func TestApplyLeaveValidationErrors(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "Alice", "alice@x.com")

	body := leaveBody()
	delete(body, "reason")
	body["endDate"] = "2024-01-05"

	status, resp, _ := s.do(t, http.MethodPost, "/api/leaves/apply", body, token)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%v)", status, resp)
	}
	fields, ok := resp["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("errors map missing: %v", resp)
	}
	if _, ok := fields["reason"]; !ok {
		t.Fatalf("reason not reported: %v", fields)
	}
	if fields["endDate"] != "End date must be same or after start date" {
		t.Fatalf("endDate = %v", fields["endDate"])
	}
}

func TestAdminListingAndBulkStatus(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "Alice", "alice@x.com")
	adminToken := s.createAdmin(t)

	var ids []string
	for i := 0; i < 3; i++ {
		status, body, _ := s.do(t, http.MethodPost, "/api/leaves/apply", leaveBody(), token)
		if status != http.StatusCreated {
			t.Fatalf("apply status = %d (%v)", status, body)
		}
		ids = append(ids, body["leave"].(map[string]interface{})["_id"].(string))
	}

	status, body, _ := s.do(t, http.MethodPut, "/api/leaves/bulk-status", fiber.Map{
		"ids":    append(ids[:2:2], "missing"),
		"status": "Rejected",
	}, adminToken)
	if status != http.StatusOK {
		t.Fatalf("bulk status = %d (%v)", status, body)
	}
	if n := len(body["updated"].([]interface{})); n != 2 {
		t.Fatalf("updated = %d, want 2", n)
	}
	failed := body["failed"].([]interface{})
	if len(failed) != 1 || failed[0].(map[string]interface{})["id"] != "missing" {
		t.Fatalf("failed = %v", failed)
	}

	status, body, _ = s.do(t, http.MethodGet, "/api/leaves?status=rejected&page=1&limit=1", nil, adminToken)
	if status != http.StatusOK {
		t.Fatalf("list status = %d (%v)", status, body)
	}
	meta := body["meta"].(map[string]interface{})
	if meta["total"].(float64) != 2 || meta["totalPages"].(float64) != 2 {
		t.Fatalf("meta = %v", meta)
	}
	first := body["leaves"].([]interface{})[0].(map[string]interface{})
	if first["requester"].(map[string]interface{})["email"] != "alice@x.com" {
		t.Fatalf("requester not attached: %v", first)
	}

	status, body, _ = s.do(t, http.MethodGet, "/api/leaves/admin-summary", nil, adminToken)
	if status != http.StatusOK {
		t.Fatalf("summary status = %d (%v)", status, body)
	}
	stats := body["stats"].(map[string]interface{})
	if stats["total"].(float64) != 3 || stats["rejected"].(float64) != 2 || stats["pending"].(float64) != 1 {
		t.Fatalf("stats = %v", stats)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leaves/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	status, _, resp := s.send(t, req)
	if status != http.StatusOK {
		t.Fatalf("export status = %d", status)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("Content-Disposition = %q", resp.Header.Get("Content-Disposition"))
	}
}

func TestUpdateUserMultipart(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register(t, "Alice", "alice@x.com")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("data", `{"city":"Pune","roomNumber":"C-101"}`); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPut, "/api/user/update-user/"+id, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	status, body, _ := s.send(t, req)
	if status != http.StatusOK {
		t.Fatalf("update status = %d (%v)", status, body)
	}
	user := body["user"].(map[string]interface{})
	if user["city"] != "Pune" || user["roomNumber"] != "C-101" {
		t.Fatalf("user = %v", user)
	}

	status, body, _ = s.do(t, http.MethodGet, "/api/user/me", nil, token)
	if status != http.StatusOK {
		t.Fatalf("me status = %d (%v)", status, body)
	}
	if body["user"].(map[string]interface{})["city"] != "Pune" {
		t.Fatalf("me = %v", body)
	}
}
