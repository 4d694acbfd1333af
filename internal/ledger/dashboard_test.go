package ledger

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balanceOf(t *testing.T, report DashboardReport, userID string) decimal.Decimal {
	t.Helper()
	for _, u := range report.Users {
		if u.UserID == userID {
			return u.Balance
		}
	}
	t.Fatalf("user %s missing from report", userID)
	return decimal.Zero
}

func TestComputeDashboard(t *testing.T) {
	tests := []struct {
		name         string
		snap         GroupSnapshot
		validateFunc func(t *testing.T, r DashboardReport)
	}{
		{
			name: "meal rate scenario with two members",
			snap: GroupSnapshot{
				Policy:   PolicySmartMeal,
				Members:  []Member{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
				Expenses: []Expense{{ID: "e1", UserID: "a", Amount: d("1000"), Category: "Bazar"}},
				Meals: []Meal{
					{ID: "m1", UserID: "a", Lunch: d("1"), Dinner: d("1")},
					{ID: "m2", UserID: "b", Dinner: d("1")},
				},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				// Rate = 1000 / 3 = 333.33
				// Alice = 1000 - 2 * 333.33 = 333.34, Bob = -333.33
				if !r.Summary.MealRate.Equal(d("333.33")) {
					t.Errorf("meal rate = %s, want 333.33", r.Summary.MealRate)
				}
				if !r.Summary.TotalMeals.Equal(d("3")) {
					t.Errorf("total meals = %s, want 3", r.Summary.TotalMeals)
				}
				if got := balanceOf(t, r, "a"); !got.Equal(d("333.34")) {
					t.Errorf("Alice balance = %s, want 333.34", got)
				}
				if got := balanceOf(t, r, "b"); !got.Equal(d("-333.33")) {
					t.Errorf("Bob balance = %s, want -333.33", got)
				}
				if len(r.Settlements) != 1 {
					t.Fatalf("settlements = %d, want 1", len(r.Settlements))
				}
				s := r.Settlements[0]
				if s.FromName != "Bob" || s.ToName != "Alice" || !s.Amount.Equal(d("333.33")) {
					t.Errorf("settlement = %+v, want Bob -> Alice 333.33", s)
				}
				if r.Users[1].Status != StatusOwes || r.Users[0].Status != StatusGetsBack {
					t.Errorf("statuses = %s/%s", r.Users[0].Status, r.Users[1].Status)
				}
				if !r.MemberMeals["a"].Equal(d("2")) || !r.MemberMeals["b"].Equal(d("1")) {
					t.Errorf("member meals = %v", r.MemberMeals)
				}
			},
		},
		{
			name: "fund deposit moves liability to the manager",
			snap: GroupSnapshot{
				ManagerID: "m",
				Members:   []Member{{ID: "m", Name: "Manager"}, {ID: "c", Name: "Carol"}},
				Funds:     []Fund{{ID: "f1", UserID: "c", Amount: d("200")}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if got := balanceOf(t, r, "c"); !got.Equal(d("200")) {
					t.Errorf("Carol balance = %s, want 200", got)
				}
				if got := balanceOf(t, r, "m"); !got.Equal(d("-200")) {
					t.Errorf("manager balance = %s, want -200", got)
				}
				if len(r.Settlements) != 1 || r.Settlements[0].FromID != "m" || r.Settlements[0].ToID != "c" {
					t.Errorf("settlements = %+v, want m -> c", r.Settlements)
				}
			},
		},
		{
			name: "fund deposit without manager only credits depositor",
			snap: GroupSnapshot{
				Members: []Member{{ID: "c", Name: "Carol"}},
				Funds:   []Fund{{ID: "f1", UserID: "c", Amount: d("50")}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if got := balanceOf(t, r, "c"); !got.Equal(d("50")) {
					t.Errorf("Carol balance = %s, want 50", got)
				}
				if len(r.Settlements) != 0 {
					t.Errorf("expected no settlements, got %+v", r.Settlements)
				}
			},
		},
		{
			name: "monthly average ignores meals",
			snap: GroupSnapshot{
				Policy: PolicyMonthlyAverage,
				Members: []Member{
					{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}, {ID: "c", Name: "Charlie"},
				},
				Expenses: []Expense{
					{ID: "e1", UserID: "a", Amount: d("200"), Category: "Rent"},
					{ID: "e2", UserID: "a", Amount: d("100"), Category: "Internet"},
				},
				Meals: []Meal{{ID: "m1", UserID: "b", Breakfast: d("10")}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				want := map[string]string{"a": "200", "b": "-100", "c": "-100"}
				for id, w := range want {
					if got := balanceOf(t, r, id); !got.Equal(d(w)) {
						t.Errorf("%s balance = %s, want %s", id, got, w)
					}
				}
				// Equal debts keep member order: Bob before Charlie
				if len(r.Settlements) != 2 {
					t.Fatalf("settlements = %d, want 2", len(r.Settlements))
				}
				if r.Settlements[0].FromID != "b" || r.Settlements[1].FromID != "c" {
					t.Errorf("settlement order = %s, %s; want b, c", r.Settlements[0].FromID, r.Settlements[1].FromID)
				}
			},
		},
		{
			name: "meal-rate member without meals owes only fixed share",
			snap: GroupSnapshot{
				Members: []Member{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
				Expenses: []Expense{
					{ID: "e1", UserID: "a", Amount: d("100"), Category: "Bazar (fish)"},
					{ID: "e2", UserID: "a", Amount: d("200"), Category: "Utilities"},
				},
				Meals: []Meal{{ID: "m1", UserID: "a", Lunch: d("2"), Dinner: d("1.5"), GuestMeals: d("0.5")}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if !r.Summary.MealRate.Equal(d("25")) {
					t.Errorf("meal rate = %s, want 25", r.Summary.MealRate)
				}
				if !r.Summary.TotalFixedExpenses.Equal(d("200")) {
					t.Errorf("fixed = %s, want 200", r.Summary.TotalFixedExpenses)
				}
				if got := balanceOf(t, r, "b"); !got.Equal(d("-100")) {
					t.Errorf("Bob balance = %s, want -100", got)
				}
				if got := balanceOf(t, r, "a"); !got.Equal(d("100")) {
					t.Errorf("Alice balance = %s, want 100", got)
				}
			},
		},
		{
			name: "no meals gives zero meal rate",
			snap: GroupSnapshot{
				Members:  []Member{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
				Expenses: []Expense{{ID: "e1", UserID: "a", Amount: d("500"), Category: "Bazar"}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if !r.Summary.MealRate.IsZero() {
					t.Errorf("meal rate = %s, want 0", r.Summary.MealRate)
				}
				if !r.Summary.TotalBazar.Equal(d("500")) {
					t.Errorf("total bazar = %s, want 500", r.Summary.TotalBazar)
				}
				if got := balanceOf(t, r, "b"); !got.IsZero() {
					t.Errorf("Bob balance = %s, want 0", got)
				}
			},
		},
		{
			name: "zero activity keeps every member at zero",
			snap: GroupSnapshot{
				Members: []Member{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}, {ID: "c", Name: "Charlie"}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if len(r.Users) != 3 {
					t.Fatalf("users = %d, want 3", len(r.Users))
				}
				for _, u := range r.Users {
					if !u.Balance.IsZero() {
						t.Errorf("%s balance = %s, want 0", u.Name, u.Balance)
					}
					if u.Status != StatusGetsBack {
						t.Errorf("%s status = %s, want %s", u.Name, u.Status, StatusGetsBack)
					}
				}
				if len(r.Settlements) != 0 {
					t.Errorf("expected no settlements, got %d", len(r.Settlements))
				}
				if len(r.MemberMeals) != 3 {
					t.Errorf("member meals = %d entries, want 3", len(r.MemberMeals))
				}
			},
		},
		{
			name: "empty snapshot",
			snap: GroupSnapshot{Policy: PolicyMonthlyAverage},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if len(r.Users) != 0 || len(r.Settlements) != 0 {
					t.Errorf("expected empty report, got %+v", r)
				}
				if !r.Summary.MealRate.IsZero() || !r.Summary.TotalMeals.IsZero() {
					t.Errorf("expected zero summary, got %+v", r.Summary)
				}
			},
		},
		{
			name: "unknown payer is settled but not listed",
			snap: GroupSnapshot{
				Policy:   PolicyMonthlyAverage,
				Members:  []Member{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
				Expenses: []Expense{{ID: "e1", UserID: "ghost", Amount: d("90"), Category: "Other"}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if len(r.Users) != 2 {
					t.Fatalf("users = %d, want 2", len(r.Users))
				}
				if len(r.Settlements) != 2 {
					t.Fatalf("settlements = %d, want 2", len(r.Settlements))
				}
				for _, s := range r.Settlements {
					if s.ToID != "ghost" || s.ToName != "" || !s.Amount.Equal(d("45")) {
						t.Errorf("settlement = %+v, want 45 to unnamed ghost", s)
					}
				}
				if r.Expenses[0].UserName != "" {
					t.Errorf("expense user name = %q, want empty", r.Expenses[0].UserName)
				}
			},
		},
		{
			name: "explicit roles win over manager id",
			snap: GroupSnapshot{
				ManagerID: "a",
				Members:   []Member{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}, {ID: "c", Name: "Charlie"}},
				Roles: []RoleAssignment{
					{UserID: "b", IsManager: true, Title: "Cook"},
				},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				want := []struct {
					manager bool
					title   string
				}{{true, TitleManager}, {true, "Cook"}, {false, TitleMember}}
				for i, w := range want {
					u := r.Users[i]
					if u.IsManager != w.manager || u.Title != w.title {
						t.Errorf("%s role = (%v, %s), want (%v, %s)", u.Name, u.IsManager, u.Title, w.manager, w.title)
					}
				}
			},
		},
		{
			name: "echoed records carry display names",
			snap: GroupSnapshot{
				Members:  []Member{{ID: "a", Name: "Alice"}},
				Expenses: []Expense{{ID: "e1", UserID: "a", Amount: d("12.5"), Category: "Bazar", Date: "2024-05-01", Items: "rice"}},
				Meals:    []Meal{{ID: "m1", UserID: "a", Date: "2024-05-01", Lunch: d("1")}},
				Funds:    []Fund{{ID: "f1", UserID: "a", Amount: d("5"), Date: "2024-05-02"}},
			},
			validateFunc: func(t *testing.T, r DashboardReport) {
				if r.Expenses[0].UserName != "Alice" || r.Expenses[0].Items != "rice" {
					t.Errorf("expense echo = %+v", r.Expenses[0])
				}
				if r.Meals[0].UserName != "Alice" || r.Meals[0].Date != "2024-05-01" {
					t.Errorf("meal echo = %+v", r.Meals[0])
				}
				if r.Funds[0].UserName != "Alice" || !r.Funds[0].Amount.Equal(d("5")) {
					t.Errorf("fund echo = %+v", r.Funds[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, ComputeDashboard(tt.snap))
		})
	}
}

func TestComputeDashboard_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		snap := randomSnapshot(rng, PolicySmartMeal)
		if i%2 == 0 {
			snap.Policy = PolicyMonthlyAverage
		}
		before, _ := json.Marshal(snap)

		first, err := json.Marshal(ComputeDashboard(snap))
		if err != nil {
			t.Fatalf("marshal report: %v", err)
		}
		second, _ := json.Marshal(ComputeDashboard(snap))
		if !bytes.Equal(first, second) {
			t.Fatalf("run %d: reports differ:\n%s\n%s", i, first, second)
		}

		after, _ := json.Marshal(snap)
		if !bytes.Equal(before, after) {
			t.Fatalf("run %d: snapshot was modified", i)
		}
	}
}

// Under monthly_avg every expense is both credited and debited, so balances net
// to zero up to the final per-member rounding.
func TestComputeDashboard_ConservesMoney(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		snap := randomSnapshot(rng, PolicyMonthlyAverage)
		r := ComputeDashboard(snap)

		var owed, due decimal.Decimal
		for _, u := range r.Users {
			if u.Balance.IsNegative() {
				owed = owed.Add(u.Balance.Neg())
			} else {
				due = due.Add(u.Balance)
			}
		}
		tolerance := decimal.New(5, -3).Mul(decimal.NewFromInt(int64(len(snap.Members))))
		if due.Sub(owed).Abs().GreaterThan(tolerance) {
			t.Fatalf("run %d: credits %s vs debts %s exceed tolerance %s", i, due, owed, tolerance)
		}
	}
}

// Under the meal-rate policy the only leak is the rounded meal rate, bounded by
// half a cent per meal unit.
func TestComputeDashboard_MealRateDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 200; i++ {
		snap := randomSnapshot(rng, PolicySmartMeal)
		r := ComputeDashboard(snap)
		if r.Summary.TotalMeals.IsZero() {
			// Bazar spend with no meals is credited but never charged
			continue
		}

		sum := decimal.Zero
		for _, u := range r.Users {
			sum = sum.Add(u.Balance)
		}
		tolerance := decimal.New(5, -3).Mul(r.Summary.TotalMeals.Add(decimal.NewFromInt(int64(len(snap.Members)))))
		if sum.Abs().GreaterThan(tolerance) {
			t.Fatalf("run %d: net %s exceeds tolerance %s", i, sum, tolerance)
		}
	}
}

func TestComputeDashboard_SettlementClearsBalances(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		policy := PolicySmartMeal
		if i%2 == 1 {
			policy = PolicyMonthlyAverage
		}
		r := ComputeDashboard(randomSnapshot(rng, policy))

		residual := make(map[string]decimal.Decimal)
		net := decimal.Zero
		for _, u := range r.Users {
			residual[u.UserID] = u.Balance
			net = net.Add(u.Balance)
		}
		for _, s := range r.Settlements {
			residual[s.FromID] = residual[s.FromID].Add(s.Amount)
			residual[s.ToID] = residual[s.ToID].Sub(s.Amount)
		}
		limit := net.Abs().Add(noise.Mul(decimal.NewFromInt(int64(len(r.Users)))))
		for id, left := range residual {
			if left.Abs().GreaterThan(limit) {
				t.Fatalf("run %d: %s left with %s after settlement (limit %s)", i, id, left, limit)
			}
		}
	}
}

var categories = []string{"Bazar", "Bazar - fish", "Rent", "Utilities"}

// randomSnapshot builds a well-formed snapshot whose expenses only use the
// categories the policy allocates. Funds are only generated when a manager is set.
func randomSnapshot(rng *rand.Rand, policy string) GroupSnapshot {
	n := 1 + rng.Intn(6)
	snap := GroupSnapshot{GroupID: "g", Policy: policy}
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		snap.Members = append(snap.Members, Member{ID: id, Name: "member-" + id})
	}
	pick := func() string { return snap.Members[rng.Intn(n)].ID }
	if rng.Intn(3) > 0 {
		snap.ManagerID = pick()
	}
	units := []string{"0", "0.5", "1", "2"}
	for i := rng.Intn(12); i > 0; i-- {
		snap.Expenses = append(snap.Expenses, Expense{
			UserID:   pick(),
			Amount:   decimal.New(int64(1+rng.Intn(500000)), -2),
			Category: categories[rng.Intn(len(categories))],
		})
	}
	for i := rng.Intn(20); i > 0; i-- {
		snap.Meals = append(snap.Meals, Meal{
			UserID:     pick(),
			Breakfast:  d(units[rng.Intn(len(units))]),
			Lunch:      d(units[rng.Intn(len(units))]),
			Dinner:     d(units[rng.Intn(len(units))]),
			GuestMeals: d(units[rng.Intn(2)]),
		})
	}
	if snap.ManagerID == "" {
		return snap
	}
	for i := rng.Intn(4); i > 0; i-- {
		snap.Funds = append(snap.Funds, Fund{UserID: pick(), Amount: decimal.New(int64(1+rng.Intn(100000)), -2)})
	}
	return snap
}
