package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
)

// CreateExpense records an expense. The ID is generated if empty.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, user_id, amount, category, date, items)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.UserID, expense.Amount, expense.Category, expense.Date, expense.Items,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func listExpenses(ctx context.Context, q queryer, groupID string) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, user_id, amount, category, date, items
		 FROM expenses WHERE group_id = ? ORDER BY rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.Items); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// CreateMeal records a member's meals for a date.
func (s *SQLiteStore) CreateMeal(ctx context.Context, meal *models.Meal) error {
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals (id, group_id, user_id, date, breakfast, lunch, dinner, guest_meals)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID, meal.GroupID, meal.UserID, meal.Date, meal.Breakfast, meal.Lunch, meal.Dinner, meal.GuestMeals,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

const mealColumns = "id, group_id, user_id, date, breakfast, lunch, dinner, guest_meals"

func scanMeal(row interface{ Scan(...any) error }) (*models.Meal, error) {
	m := &models.Meal{}
	if err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Date, &m.Breakfast, &m.Lunch, &m.Dinner, &m.GuestMeals); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMeal applies the non-nil fields of patch to a meal in the group.
func (s *SQLiteStore) UpdateMeal(ctx context.Context, groupID, mealID string, patch models.MealPatch) (*models.Meal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	meal, err := scanMeal(tx.QueryRowContext(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE id = ? AND group_id = ?", mealID, groupID,
	))
	if isNoRows(err) {
		return nil, notFound("meal", mealID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}

	apply := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&meal.Breakfast, patch.Breakfast)
	apply(&meal.Lunch, patch.Lunch)
	apply(&meal.Dinner, patch.Dinner)
	apply(&meal.GuestMeals, patch.GuestMeals)

	_, err = tx.ExecContext(ctx,
		"UPDATE meals SET breakfast = ?, lunch = ?, dinner = ?, guest_meals = ? WHERE id = ?",
		meal.Breakfast, meal.Lunch, meal.Dinner, meal.GuestMeals, meal.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return meal, nil
}

func listMeals(ctx context.Context, q queryer, groupID string) ([]models.Meal, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE group_id = ? ORDER BY rowid", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	return meals, nil
}

// CreateFund records a deposit into the group fund.
func (s *SQLiteStore) CreateFund(ctx context.Context, fund *models.Fund) error {
	if fund.ID == "" {
		fund.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO funds (id, group_id, user_id, amount, date) VALUES (?, ?, ?, ?, ?)",
		fund.ID, fund.GroupID, fund.UserID, fund.Amount, fund.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund: %w", err)
	}
	return nil
}

// UpdateFund changes the amount and date of a deposit in the group.
func (s *SQLiteStore) UpdateFund(ctx context.Context, groupID, fundID string, amount decimal.Decimal, date string) (*models.Fund, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE funds SET amount = ?, date = ? WHERE id = ? AND group_id = ?",
		amount, date, fundID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update fund: %w", err)
	}
	if err := requireAffected(res, "fund", fundID); err != nil {
		return nil, err
	}

	fund := &models.Fund{}
	err = s.db.QueryRowContext(ctx,
		"SELECT id, group_id, user_id, amount, date FROM funds WHERE id = ?", fundID,
	).Scan(&fund.ID, &fund.GroupID, &fund.UserID, &fund.Amount, &fund.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return fund, nil
}

func listFunds(ctx context.Context, q queryer, groupID string) ([]models.Fund, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, group_id, user_id, amount, date FROM funds WHERE group_id = ? ORDER BY rowid", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		var f models.Fund
		if err := rows.Scan(&f.ID, &f.GroupID, &f.UserID, &f.Amount, &f.Date); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}
	return funds, nil
}
