package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-tracker/internal/api/http"
	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memTicketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, ticket)
	}
	return result, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

var (
	_ repository.UserRepository   = (*memUserRepo)(nil)
	_ repository.TicketRepository = (*memTicketRepo)(nil)
)

func newTestApp() *fiber.App {
	userRepo := newMemUserRepo()
	ticketRepo := newMemTicketRepo()
	logger := zap.NewNop()

	userService := service.NewUserService(service.UserDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Assignment: service.NewAssignmentService(userRepo),
		Logger:     logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler("ticket-tracker-test", "dev", nil, nil),
		Users:   handlers.NewUsersHandler(userService),
		Tickets: handlers.NewTicketsHandler(ticketService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}

func TestRegisterUser(t *testing.T) {
	app := newTestApp()

	resp, body := doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", resp.StatusCode, body)
	}

	var user struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.UserID != 1 || user.Username != "alice" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestRegisterUser_MissingUsername(t *testing.T) {
	app := newTestApp()

	resp, _ := doJSON(t, app, http.MethodPost, "/user", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListUsers(t *testing.T) {
	app := newTestApp()
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "bob"})

	resp, body := doJSON(t, app, http.MethodGet, "/user", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var users map[string]struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users["1"].Username != "alice" || users["2"].Username != "bob" {
		t.Errorf("unexpected listing %+v", users)
	}
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp()
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})

	resp, body := doJSON(t, app, http.MethodDelete, "/user", fiber.Map{"user_id": 1})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body %s", resp.StatusCode, body)
	}

	var user struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.UserID != 1 || user.Username != "alice" {
		t.Errorf("unexpected snapshot %+v", user)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/user", fiber.Map{"user_id": 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestRaiseTicket_RotatesAssignees(t *testing.T) {
	app := newTestApp()
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "bob"})
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "carol"})

	type raiseResponse struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
		Data    struct {
			TicketID   *string `json:"ticket_id"`
			AssignedTo *int64  `json:"assigned_to"`
		} `json:"data"`
	}

	for i, want := range []int64{1, 2, 3} {
		resp, body := doJSON(t, app, http.MethodPost, "/ticket", fiber.Map{"user_id": 1, "issue": "help"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("raise %d status = %d, want 200; body %s", i, resp.StatusCode, body)
		}
		var raised raiseResponse
		if err := json.Unmarshal(body, &raised); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !raised.Success || raised.Data.TicketID == nil || raised.Data.AssignedTo == nil {
			t.Fatalf("raise %d unexpected envelope %s", i, body)
		}
		if *raised.Data.AssignedTo != want {
			t.Errorf("raise %d assigned to %d, want %d", i, *raised.Data.AssignedTo, want)
		}
	}
}

func TestRaiseTicket_UnknownRequester(t *testing.T) {
	app := newTestApp()

	resp, body := doJSON(t, app, http.MethodPost, "/ticket", fiber.Map{"user_id": 42, "issue": "help"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", resp.StatusCode, body)
	}

	var raised struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
		Data    struct {
			TicketID   *string `json:"ticket_id"`
			AssignedTo *int64  `json:"assigned_to"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raised); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raised.Success {
		t.Error("success = true, want false")
	}
	if raised.Data.TicketID != nil || raised.Data.AssignedTo != nil {
		t.Errorf("data not null: %s", body)
	}
	if raised.Message == "" {
		t.Error("expected descriptive message")
	}
}

func TestRaiseTicket_MissingFields(t *testing.T) {
	app := newTestApp()
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})

	for _, payload := range []fiber.Map{
		{"issue": "help"},
		{"user_id": 1},
	} {
		resp, _ := doJSON(t, app, http.MethodPost, "/ticket", payload)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %v: status = %d, want 400", payload, resp.StatusCode)
		}
	}
}

func TestDeleteTicket(t *testing.T) {
	app := newTestApp()
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})

	_, body := doJSON(t, app, http.MethodPost, "/ticket", fiber.Map{"user_id": 1, "issue": "help"})
	var raised struct {
		Data struct {
			TicketID *string `json:"ticket_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raised); err != nil || raised.Data.TicketID == nil {
		t.Fatalf("decode raise response: %v (%s)", err, body)
	}

	resp, body := doJSON(t, app, http.MethodDelete, "/ticket", fiber.Map{"ticket_id": *raised.Data.TicketID})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body %s", resp.StatusCode, body)
	}

	var snapshot struct {
		TicketID   string `json:"ticket_id"`
		Issue      string `json:"issue"`
		AssignedTo int64  `json:"assigned_to"`
		RaisedBy   int64  `json:"raised_by"`
	}
	if err := json.Unmarshal(body, &snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.TicketID != *raised.Data.TicketID || snapshot.Issue != "help" || snapshot.RaisedBy != 1 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/ticket", fiber.Map{"ticket_id": *raised.Data.TicketID})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestListTickets(t *testing.T) {
	app := newTestApp()
	doJSON(t, app, http.MethodPost, "/user", fiber.Map{"username": "alice"})
	doJSON(t, app, http.MethodPost, "/ticket", fiber.Map{"user_id": 1, "issue": "first"})
	doJSON(t, app, http.MethodPost, "/ticket", fiber.Map{"user_id": 1, "issue": "second"})

	resp, body := doJSON(t, app, http.MethodGet, "/ticket", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var tickets map[string]struct {
		TicketID   string `json:"ticket_id"`
		Issue      string `json:"issue"`
		AssignedTo int64  `json:"assigned_to"`
		RaisedBy   int64  `json:"raised_by"`
	}
	if err := json.Unmarshal(body, &tickets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	for id, ticket := range tickets {
		if ticket.TicketID != id {
			t.Errorf("map key %s does not match ticket id %s", id, ticket.TicketID)
		}
		if ticket.AssignedTo != 1 || ticket.RaisedBy != 1 {
			t.Errorf("unexpected ticket %+v", ticket)
		}
	}
}
