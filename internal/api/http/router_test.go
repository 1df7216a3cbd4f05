package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-maintenance/internal/api/http/handlers"
	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/observability"
	"github.com/spec-kit/asset-maintenance/internal/repository/memory"
	"github.com/spec-kit/asset-maintenance/internal/service"
	"github.com/spec-kit/asset-maintenance/internal/storage"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
	files  *storage.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	memory.SeedDemo(store)
	store.PutUser(domain.User{ID: "user-inactive", Role: domain.RoleUser, Active: false})

	tokens := auth.NewTokenManager("test-secret", 5)
	files := storage.NewMemoryStore()
	metrics := observability.NewMetrics()
	app := NewServer(ServerConfig{
		AppName: "test",
		Metrics: metrics,
		Routes: RouteConfig{
			Health:         handlers.NewHealthHandler("test", "v0", nil, nil, metrics),
			Tickets:        handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{Store: store}), service.NewCounterService(store)),
			Uploads:        handlers.NewUploadsHandler(files, 1, nil),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repos().Users),
		},
	})
	return &testServer{app: app, tokens: tokens, files: files}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken(userID, "")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

type response struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token(t, userID))
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request) (int, response) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	var out response
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, r response) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(r.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", r.Data, err)
	}
	return out
}

type ticketBody struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Cost         int64  `json:"cost"`
	TechnicianID string `json:"technician_id"`
	SuppliesUsed []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"supplies_used"`
	History []struct {
		Status string `json:"status"`
	} `json:"history"`
	Notes []struct {
		ID string `json:"id"`
	} `json:"notes"`
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, fiber.MethodGet, "/health/live", "", nil)
	if status != fiber.StatusOK {
		t.Errorf("live status = %d, want 200", status)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/health/ready", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	defer resp.Body.Close()
	var ready struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		t.Fatalf("decode ready: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK || ready.Dependencies["postgres"] != "disabled" || ready.Dependencies["redis"] != "disabled" {
		t.Errorf("ready = %d %+v, want 200 with disabled dependencies", resp.StatusCode, ready)
	}
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"unknown user", "Bearer " + s.token(t, "user-ghost"), fiber.StatusUnauthorized},
		{"inactive user", "Bearer " + s.token(t, "user-inactive"), fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/api/v1/tickets", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			status, body := s.send(t, req)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if body.Error == nil || body.Error.Code != "UNAUTHORIZED" {
				t.Errorf("error = %+v, want UNAUTHORIZED", body.Error)
			}
		})
	}

	status, body := s.do(t, fiber.MethodGet, "/api/v1/metrics", memory.DemoManagerID, nil)
	if status != fiber.StatusForbidden || body.Error == nil || body.Error.Code != "FORBIDDEN" {
		t.Errorf("metrics as manager = %d %+v, want 403", status, body.Error)
	}
	if status, _ := s.do(t, fiber.MethodGet, "/api/v1/metrics", memory.DemoAdminID, nil); status != fiber.StatusOK {
		t.Errorf("metrics as admin = %d, want 200", status)
	}
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	const (
		requester = memory.DemoRequesterID
		manager   = memory.DemoManagerID
		tech      = memory.DemoTechnicianID
	)

	status, body := s.do(t, fiber.MethodPost, "/api/v1/tickets", requester, map[string]any{
		"asset_id":    memory.DemoAssetID,
		"type":        "Repair",
		"description": "streaks on every page",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d, error %+v", status, body.Error)
	}
	ticket := decode[ticketBody](t, body)
	base := "/api/v1/tickets/" + ticket.ID

	status, body = s.do(t, fiber.MethodPost, "/api/v1/tickets", requester, map[string]any{"asset_id": memory.DemoAssetID})
	if status != fiber.StatusForbidden {
		t.Errorf("second create status = %d, want 403 (asset no longer assigned)", status)
	}

	status, body = s.do(t, fiber.MethodPost, base+"/accept", manager, map[string]any{"technician_id": tech})
	if status != fiber.StatusConflict || body.Error.Code != "INVALID_TRANSITION" {
		t.Fatalf("accept draft = %d %+v, want 409 INVALID_TRANSITION", status, body.Error)
	}
	if body.Error.Details["from"] != "Draft" {
		t.Errorf("details = %v, want from Draft", body.Error.Details)
	}

	steps := []struct {
		method string
		path   string
		user   string
		body   any
		want   string
	}{
		{fiber.MethodPost, base + "/send", requester, nil, "Sent"},
		{fiber.MethodPost, base + "/accept", manager, map[string]any{"technician_id": tech}, "Accepted"},
		{fiber.MethodPost, base + "/start", tech, nil, "In Progress"},
	}
	for _, step := range steps {
		status, body = s.do(t, step.method, step.path, step.user, step.body)
		if status != fiber.StatusOK {
			t.Fatalf("%s status = %d, error %+v", step.path, status, body.Error)
		}
		if got := decode[ticketBody](t, body).Status; got != step.want {
			t.Fatalf("%s status = %q, want %q", step.path, got, step.want)
		}
	}

	status, body = s.do(t, fiber.MethodPatch, base+"/work", tech, map[string]any{
		"supplies":     []map[string]any{{"supply_id": memory.DemoSupplyID, "quantity": 30}},
		"after_photos": []string{"memory://x"},
	})
	if status != fiber.StatusConflict || body.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("overdraw = %d %+v, want 409 INSUFFICIENT_STOCK", status, body.Error)
	}

	status, body = s.do(t, fiber.MethodPatch, base+"/work", tech, map[string]any{
		"supplies": []map[string]any{{"supply_id": memory.DemoSupplyID, "quantity": 2}},
		"notes":    []string{"replaced drum"},
	})
	if status != fiber.StatusOK {
		t.Fatalf("work status = %d, error %+v", status, body.Error)
	}
	worked := decode[ticketBody](t, body)
	if worked.Cost != 9000 || len(worked.SuppliesUsed) != 1 {
		t.Fatalf("work = cost %d lines %d, want 9000 and 1", worked.Cost, len(worked.SuppliesUsed))
	}

	status, body = s.do(t, fiber.MethodPost, base+"/complete", manager, nil)
	if status != fiber.StatusOK || decode[ticketBody](t, body).Status != "Done" {
		t.Fatalf("complete = %d %+v", status, body.Error)
	}

	status, body = s.do(t, fiber.MethodDelete, base+"/supplies/"+worked.SuppliesUsed[0].ID, tech, nil)
	if status != fiber.StatusConflict || body.Error.Code != "CONFLICT" {
		t.Errorf("remove supply after done = %d %+v, want 409 CONFLICT", status, body.Error)
	}

	status, body = s.do(t, fiber.MethodGet, base, requester, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	detail := decode[ticketBody](t, body)
	var statuses []string
	for _, h := range detail.History {
		statuses = append(statuses, h.Status)
	}
	want := []string{"Draft", "Sent", "Accepted", "In Progress", "Done"}
	if len(statuses) != len(want) {
		t.Fatalf("history = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("history[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}
	if len(detail.Notes) != 1 {
		t.Errorf("notes = %d, want 1", len(detail.Notes))
	}
}

func TestTicketListAndCounters(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, fiber.MethodPost, "/api/v1/tickets", memory.DemoRequesterID, map[string]any{"asset_id": memory.DemoAssetID})
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	ticket := decode[ticketBody](t, body)
	if status, _ := s.do(t, fiber.MethodPost, "/api/v1/tickets/"+ticket.ID+"/send", memory.DemoRequesterID, nil); status != fiber.StatusOK {
		t.Fatalf("send status = %d", status)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/v1/tickets?scope=mine&status=Sent,Draft", memory.DemoRequesterID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if items := decode[[]ticketBody](t, body); len(items) != 1 || items[0].ID != ticket.ID {
		t.Errorf("mine = %+v, want the one ticket", items)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/v1/tickets", memory.DemoTechnicianID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if items := decode[[]ticketBody](t, body); len(items) != 0 {
		t.Errorf("technician sees %d unclaimed tickets, want 0", len(items))
	}

	status, body = s.do(t, fiber.MethodGet, "/api/v1/tickets?scope=bogus", memory.DemoRequesterID, nil)
	if status != fiber.StatusBadRequest || body.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("bogus scope = %d %+v, want 400", status, body.Error)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/v1/tickets/counters", memory.DemoManagerID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("counters status = %d", status)
	}
	counters := decode[map[string]int](t, body)
	if counters["pendingDeptTickets"] != 1 || counters["activeTickets"] != 0 {
		t.Errorf("counters = %v, want one pending department ticket", counters)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/v1/tickets/does-not-exist", memory.DemoAdminID, nil)
	if status != fiber.StatusNotFound || body.Error.Code != "NOT_FOUND" {
		t.Errorf("missing ticket = %d %+v, want 404", status, body.Error)
	}

	if status, _ := s.do(t, fiber.MethodDelete, "/api/v1/tickets/"+ticket.ID, memory.DemoManagerID, nil); status != fiber.StatusForbidden {
		t.Errorf("manager delete = %d, want 403", status)
	}
	if status, _ := s.do(t, fiber.MethodDelete, "/api/v1/tickets/"+ticket.ID, memory.DemoAdminID, nil); status != fiber.StatusNoContent {
		t.Errorf("admin delete = %d, want 204", status)
	}
}

func TestNotesOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, fiber.MethodPost, "/api/v1/tickets", memory.DemoRequesterID, map[string]any{"asset_id": memory.DemoAssetID})
	ticket := decode[ticketBody](t, body)
	base := "/api/v1/tickets/" + ticket.ID + "/notes"

	status, body := s.do(t, fiber.MethodPost, base, memory.DemoRequesterID, map[string]any{"content": "toner smell"})
	if status != fiber.StatusCreated {
		t.Fatalf("add note = %d %+v", status, body.Error)
	}
	note := decode[struct {
		ID string `json:"id"`
	}](t, body)

	if status, _ := s.do(t, fiber.MethodPatch, base+"/"+note.ID, memory.DemoManagerID, map[string]any{"content": "edited"}); status != fiber.StatusForbidden {
		t.Errorf("manager edit = %d, want 403", status)
	}
	if status, _ := s.do(t, fiber.MethodPatch, base+"/"+note.ID, memory.DemoRequesterID, map[string]any{"content": "edited"}); status != fiber.StatusOK {
		t.Errorf("author edit = %d, want 200", status)
	}
	if status, _ := s.do(t, fiber.MethodDelete, base+"/"+note.ID, memory.DemoRequesterID, nil); status != fiber.StatusNoContent {
		t.Errorf("author delete = %d, want 204", status)
	}
}

func TestUploadPhotos(t *testing.T) {
	s := newTestServer(t)

	upload := func(contentType string, size int) (int, response) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photos"; filename="before.JPG"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart() error = %v", err)
		}
		_, _ = part.Write(bytes.Repeat([]byte{0xff}, size))
		_ = w.Close()

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/uploads/photos", &buf)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token(t, memory.DemoTechnicianID))
		return s.send(t, req)
	}

	status, body := upload("image/jpeg", 128)
	if status != fiber.StatusCreated {
		t.Fatalf("upload = %d %+v", status, body.Error)
	}
	paths := decode[struct {
		Paths []string `json:"paths"`
	}](t, body).Paths
	if len(paths) != 1 {
		t.Fatalf("paths = %v, want 1", paths)
	}
	if data, ok := s.files.Object(paths[0]); !ok || len(data) != 128 {
		t.Errorf("stored object = %d bytes (found %v), want 128", len(data), ok)
	}

	if status, _ := upload("application/pdf", 10); status != fiber.StatusBadRequest {
		t.Errorf("pdf upload = %d, want 400", status)
	}
	if status, _ := upload("image/png", 2<<20); status != fiber.StatusBadRequest {
		t.Errorf("oversized upload = %d, want 400", status)
	}
}
