package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

type mealPlanRepository struct {
	db *sql.DB
}

// NewMealPlanRepository creates a new meal plan repository. There is at most
// one plan per household and week_start, enforced by a unique index.
func NewMealPlanRepository(db *sql.DB) repository.MealPlanRepository {
	return &mealPlanRepository{db: db}
}

const mealPlanColumns = `id, household_id, week_start, meals, must_include_recipes, category_requirements,
	use_up_items, created_at, updated_at`

func scanMealPlan(row scanner) (*models.MealPlan, error) {
	plan := &models.MealPlan{}
	var (
		weekStart    sql.NullTime
		meals        []byte
		requirements []byte
		mustInclude  pq.Int64Array
		useUp        pq.Int64Array
	)
	err := row.Scan(
		&plan.ID, &plan.HouseholdID, &weekStart, &meals, &mustInclude, &requirements,
		&useUp, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d := dateFromNull(weekStart); d != nil {
		plan.WeekStart = *d
	}
	plan.MustIncludeRecipes = []int64(mustInclude)
	plan.UseUpItems = []int64(useUp)
	plan.Meals = map[string]models.PlannedMeal{}
	plan.CategoryRequirements = map[string]int{}
	if len(meals) > 0 {
		if err := json.Unmarshal(meals, &plan.Meals); err != nil {
			return nil, fmt.Errorf("failed to decode meals of plan %d: %w", plan.ID, err)
		}
	}
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &plan.CategoryRequirements); err != nil {
			return nil, fmt.Errorf("failed to decode requirements of plan %d: %w", plan.ID, err)
		}
	}
	return plan, nil
}

func (r *mealPlanRepository) Create(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	meals, err := jsonArg(plan.Meals)
	if err != nil {
		return nil, err
	}
	requirements, err := jsonArg(plan.CategoryRequirements)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO meal_plans (household_id, week_start, meals, must_include_recipes, category_requirements,
			use_up_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	ts := now()
	plan.CreatedAt = ts
	plan.UpdatedAt = ts

	err = r.db.QueryRowContext(ctx, query,
		plan.HouseholdID, plan.WeekStart.String(), meals, pq.Array(plan.MustIncludeRecipes), requirements,
		pq.Array(plan.UseUpItems), plan.CreatedAt, plan.UpdatedAt,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create meal plan: %w", err)
	}
	return plan, nil
}

func (r *mealPlanRepository) GetByWeek(ctx context.Context, householdID int64, weekStart civil.Date) (*models.MealPlan, error) {
	plan, err := scanMealPlan(r.db.QueryRowContext(ctx,
		`SELECT `+mealPlanColumns+` FROM meal_plans WHERE household_id = $1 AND week_start = $2`,
		householdID, weekStart.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return plan, nil
}

func (r *mealPlanRepository) GetByID(ctx context.Context, id int64) (*models.MealPlan, error) {
	plan, err := scanMealPlan(r.db.QueryRowContext(ctx,
		`SELECT `+mealPlanColumns+` FROM meal_plans WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return plan, nil
}

func (r *mealPlanRepository) Update(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	meals, err := jsonArg(plan.Meals)
	if err != nil {
		return nil, err
	}
	requirements, err := jsonArg(plan.CategoryRequirements)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE meal_plans
		SET meals = $2, must_include_recipes = $3, category_requirements = $4, use_up_items = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at`

	plan.UpdatedAt = now()
	err = r.db.QueryRowContext(ctx, query,
		plan.ID, meals, pq.Array(plan.MustIncludeRecipes), requirements, pq.Array(plan.UseUpItems), plan.UpdatedAt,
	).Scan(&plan.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("meal plan %d: %w", plan.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update meal plan: %w", err)
	}
	return plan, nil
}
