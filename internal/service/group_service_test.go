package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/hisab/internal/api"
	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage/sqlite"
)

// recorder is a notify.Publisher that keeps everything it was handed.
type recorder struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (r *recorder) Publish(_ context.Context, notifications []*models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notifications...)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) to(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n.Message)
		}
	}
	return out
}

type testEnv struct {
	auth      *api.AuthServiceClient
	groups    *api.GroupServiceClient
	ledger    *api.LedgerServiceClient
	inbox     *api.InboxServiceClient
	cash      *api.CashServiceClient
	published *recorder
	registry  *prometheus.Registry
}

// setupTestServer serves every service, behind the production interceptors,
// from a fresh SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	published := &recorder{}
	registry := prometheus.NewRegistry()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	interceptors := connect.WithInterceptors(
		middleware.NewMetrics(registry).Interceptor(),
		middleware.RequireAuth(jwtManager, api.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, published, registry), interceptors))
	mux.Handle(api.NewLedgerServiceHandler(NewLedgerService(store, published), interceptors))
	mux.Handle(api.NewInboxServiceHandler(NewInboxService(store, published), interceptors))
	mux.Handle(api.NewCashServiceHandler(NewCashService(store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		auth:      api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:    api.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger:    api.NewLedgerServiceClient(http.DefaultClient, server.URL),
		inbox:     api.NewInboxServiceClient(http.DefaultClient, server.URL),
		cash:      api.NewCashServiceClient(http.DefaultClient, server.URL),
		published: published,
		registry:  registry,
	}
}

// session is a signed-up user.
type session struct {
	id    string
	token string
}

func signup(t *testing.T, env *testEnv, username string) session {
	t.Helper()
	resp, err := env.auth.Signup(context.Background(), connect.NewRequest(&api.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Signup(%s) failed: %v", username, err)
	}
	return session{id: resp.Msg.User.ID, token: resp.Msg.Token}
}

func authed[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

func createGroup(t *testing.T, env *testEnv, owner session, uniqueName, policy string) api.Group {
	t.Helper()
	resp, err := env.groups.CreateGroup(context.Background(), authed(owner, &api.CreateGroupRequest{
		UniqueName:  uniqueName,
		DisplayName: "Flat " + uniqueName,
		Policy:      policy,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func joinGroup(t *testing.T, env *testEnv, s session, uniqueName string) {
	t.Helper()
	if _, err := env.groups.JoinGroup(context.Background(), authed(s, &api.JoinGroupRequest{UniqueName: uniqueName})); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected %v, got %v (%v)", code, got, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")

	group := createGroup(t, env, alice, "flat-4b", "")

	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.ManagerID != alice.id {
		t.Errorf("manager: expected %s, got %s", alice.id, group.ManagerID)
	}
	if group.Policy != ledger.PolicySmartMeal {
		t.Errorf("policy: expected default %q, got %q", ledger.PolicySmartMeal, group.Policy)
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	createGroup(t, env, alice, "taken", "")

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
		code connect.Code
	}{
		{"empty name", &api.CreateGroupRequest{UniqueName: " "}, connect.CodeInvalidArgument},
		{"name with space", &api.CreateGroupRequest{UniqueName: "my flat"}, connect.CodeInvalidArgument},
		{"unknown policy", &api.CreateGroupRequest{UniqueName: "x", Policy: "weekly"}, connect.CodeInvalidArgument},
		{"duplicate name", &api.CreateGroupRequest{UniqueName: "taken"}, connect.CodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(context.Background(), authed(alice, tt.req))
			wantCode(t, err, tt.code)
		})
	}
}

func TestCreateGroup_RequiresToken(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{UniqueName: "x"}))
	wantCode(t, err, connect.CodeUnauthenticated)

	bogus := session{token: "not-a-token"}
	_, err = env.groups.ListMyGroups(context.Background(), authed(bogus, &api.ListMyGroupsRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestJoinGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	group := createGroup(t, env, alice, "mess", "")

	joinGroup(t, env, bob, "mess")

	t.Run("duplicate membership is rejected", func(t *testing.T) {
		_, err := env.groups.JoinGroup(context.Background(), authed(bob, &api.JoinGroupRequest{UniqueName: "mess"}))
		wantCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.groups.JoinGroup(context.Background(), authed(bob, &api.JoinGroupRequest{UniqueName: "nope"}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("listed for the new member", func(t *testing.T) {
		resp, err := env.groups.ListMyGroups(context.Background(), authed(bob, &api.ListMyGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListMyGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].ID != group.ID {
			t.Errorf("groups = %+v", resp.Msg.Groups)
		}
	})

	t.Run("joiner gets member role", func(t *testing.T) {
		resp, err := env.groups.GetDashboard(context.Background(), authed(bob, &api.GetDashboardRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetDashboard failed: %v", err)
		}
		for _, u := range resp.Msg.Dashboard.Users {
			wantTitle := models.TitleMember
			if u.UserID == alice.id {
				wantTitle = models.TitleManager
			}
			if u.Title != wantTitle {
				t.Errorf("%s title = %q, want %q", u.Name, u.Title, wantTitle)
			}
		}
	})
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	group := createGroup(t, env, alice, "mess", "")
	joinGroup(t, env, bob, "mess")

	_, err := env.groups.DeleteGroup(context.Background(), authed(bob, &api.DeleteGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	if _, err := env.groups.DeleteGroup(context.Background(), authed(alice, &api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetDashboard(context.Background(), authed(alice, &api.GetDashboardRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestRemoveMember(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	carol := signup(t, env, "carol")
	group := createGroup(t, env, alice, "mess", "")
	joinGroup(t, env, bob, "mess")
	joinGroup(t, env, carol, "mess")

	t.Run("members cannot remove others", func(t *testing.T) {
		_, err := env.groups.RemoveMember(context.Background(), authed(bob, &api.RemoveMemberRequest{GroupID: group.ID, UserID: carol.id}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("members can leave", func(t *testing.T) {
		if _, err := env.groups.RemoveMember(context.Background(), authed(bob, &api.RemoveMemberRequest{GroupID: group.ID, UserID: bob.id})); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		_, err := env.groups.GetDashboard(context.Background(), authed(bob, &api.GetDashboardRequest{GroupID: group.ID}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("manager removes a member", func(t *testing.T) {
		if _, err := env.groups.RemoveMember(context.Background(), authed(alice, &api.RemoveMemberRequest{GroupID: group.ID, UserID: carol.id})); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		_, err := env.groups.RemoveMember(context.Background(), authed(alice, &api.RemoveMemberRequest{GroupID: group.ID, UserID: carol.id}))
		wantCode(t, err, connect.CodeNotFound)
	})
}

func TestUpdateRole(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	outsider := signup(t, env, "dave")
	group := createGroup(t, env, alice, "mess", "")
	joinGroup(t, env, bob, "mess")

	_, err := env.groups.UpdateRole(context.Background(), authed(bob, &api.UpdateRoleRequest{GroupID: group.ID, UserID: bob.id, IsManager: true}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.UpdateRole(context.Background(), authed(alice, &api.UpdateRoleRequest{GroupID: group.ID, UserID: outsider.id, Title: "Cook"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	if _, err := env.groups.UpdateRole(context.Background(), authed(alice, &api.UpdateRoleRequest{
		GroupID: group.ID, UserID: bob.id, IsManager: true, Title: "Co-manager",
	})); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}

	resp, err := env.groups.GetDashboard(context.Background(), authed(alice, &api.GetDashboardRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	var found bool
	for _, u := range resp.Msg.Dashboard.Users {
		if u.UserID == bob.id {
			found = true
			if !u.IsManager || u.Title != "Co-manager" {
				t.Errorf("bob = %+v, want co-manager", u)
			}
		}
	}
	if !found {
		t.Fatal("bob missing from dashboard")
	}

	// An explicit manager role grants manager rights.
	if _, err := env.groups.UpdateRole(context.Background(), authed(bob, &api.UpdateRoleRequest{GroupID: group.ID, UserID: bob.id, IsManager: true, Title: "Boss"})); err != nil {
		t.Errorf("co-manager UpdateRole failed: %v", err)
	}
}

func TestGetDashboard(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	group := createGroup(t, env, alice, "mess", ledger.PolicySmartMeal)
	joinGroup(t, env, bob, "mess")

	mustExpense := func(s session, amount, category string) {
		t.Helper()
		if _, err := env.ledger.AddExpense(ctx, authed(s, &api.AddExpenseRequest{
			GroupID: group.ID, Amount: dec(amount), Category: category, Date: "2024-03-01",
		})); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}
	mustMeal := func(s session, lunch, dinner string) {
		t.Helper()
		if _, err := env.ledger.AddMeal(ctx, authed(s, &api.AddMealRequest{
			GroupID: group.ID, Date: "2024-03-01", Lunch: dec(lunch), Dinner: dec(dinner),
		})); err != nil {
			t.Fatalf("AddMeal failed: %v", err)
		}
	}

	mustExpense(bob, "300", "Bazar")
	mustExpense(alice, "90", "Rent")
	mustMeal(alice, "1", "1")
	mustMeal(bob, "1", "0")

	resp, err := env.groups.GetDashboard(ctx, authed(alice, &api.GetDashboardRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	d := resp.Msg.Dashboard

	if !d.Summary.MealRate.Equal(dec("100")) || !d.Summary.TotalBazar.Equal(dec("300")) ||
		!d.Summary.TotalMeals.Equal(dec("3")) || !d.Summary.TotalFixedExpenses.Equal(dec("90")) {
		t.Errorf("summary = %+v", d.Summary)
	}

	// alice: 90 - (2 x 100 + 45) = -155, bob: 300 - (100 + 45) = 155
	balances := map[string]api.UserBalance{}
	for _, u := range d.Users {
		balances[u.UserID] = u
	}
	if b := balances[alice.id]; !b.Balance.Equal(dec("-155")) || b.Status != ledger.StatusOwes {
		t.Errorf("alice = %+v", b)
	}
	if b := balances[bob.id]; !b.Balance.Equal(dec("155")) || b.Status != ledger.StatusGetsBack {
		t.Errorf("bob = %+v", b)
	}

	if len(d.Settlements) != 1 {
		t.Fatalf("settlements = %+v", d.Settlements)
	}
	s := d.Settlements[0]
	if s.FromID != alice.id || s.ToID != bob.id || s.FromName != "alice" || s.ToName != "bob" || !s.Amount.Equal(dec("155")) {
		t.Errorf("settlement = %+v", s)
	}

	if !d.MemberMeals[alice.id].Equal(dec("2")) || !d.MemberMeals[bob.id].Equal(dec("1")) {
		t.Errorf("member meals = %+v", d.MemberMeals)
	}
	if len(d.Expenses) != 2 || d.Expenses[0].UserName != "bob" || len(d.Meals) != 2 {
		t.Errorf("echoed records: expenses %+v, meals %+v", d.Expenses, d.Meals)
	}

	if n := testutil.CollectAndCount(env.registry, "hisab_dashboard_settlements"); n != 1 {
		t.Errorf("hisab_dashboard_settlements series = %d, want 1", n)
	}
}

func TestGetDashboard_NonMember(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	eve := signup(t, env, "eve")
	group := createGroup(t, env, alice, "mess", "")

	_, err := env.groups.GetDashboard(context.Background(), authed(eve, &api.GetDashboardRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetDashboard(context.Background(), authed(alice, &api.GetDashboardRequest{GroupID: "missing"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestSendReminder(t *testing.T) {
	env := setupTestServer(t)
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")
	group := createGroup(t, env, alice, "mess", "")
	joinGroup(t, env, bob, "mess")

	if _, err := env.groups.SendReminder(context.Background(), authed(alice, &api.SendReminderRequest{GroupID: group.ID, UserID: bob.id})); err != nil {
		t.Fatalf("SendReminder failed: %v", err)
	}

	msgs := env.published.to(bob.id)
	if len(msgs) != 1 || msgs[0] != "Reminder: You have pending dues in Flat mess. Please settle soon." {
		t.Errorf("published to bob = %q", msgs)
	}

	resp, err := env.inbox.ListNotifications(context.Background(), authed(bob, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(resp.Msg.Notifications) != 1 {
		t.Errorf("notifications = %+v", resp.Msg.Notifications)
	}
}

func TestRPCMetrics(t *testing.T) {
	env := setupTestServer(t)
	signup(t, env, "alice")

	_, err := env.groups.ListMyGroups(context.Background(), connect.NewRequest(&api.ListMyGroupsRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)

	if n := testutil.CollectAndCount(env.registry, "hisab_rpc_requests_total"); n != 2 {
		t.Errorf("hisab_rpc_requests_total series = %d, want 2", n)
	}
}
