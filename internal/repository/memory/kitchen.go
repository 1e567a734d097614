package memory

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// InventoryRepository is an in-memory repository.InventoryRepository.
type InventoryRepository struct {
	t *table[models.InventoryItem]
}

// NewInventoryRepository creates an empty inventory.
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{t: newTable[models.InventoryItem]()}
}

func (r *InventoryRepository) Create(_ context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("inventory item %q: quantity must be positive", item.Name)
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *item
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.t.insert(&c, func(i *models.InventoryItem, id int64) { i.ID = id })
	out := c
	return &out, nil
}

func (r *InventoryRepository) GetByID(_ context.Context, id int64) (*models.InventoryItem, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	i, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	c := *i
	return &c, nil
}

func (r *InventoryRepository) List(_ context.Context, householdID int64) ([]*models.InventoryItem, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.InventoryItem
	r.t.each(func(i *models.InventoryItem) {
		if i.HouseholdID == householdID {
			c := *i
			out = append(out, &c)
		}
	})
	return out, nil
}

func (r *InventoryRepository) Update(_ context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("inventory item %d: quantity must be positive", item.ID)
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[item.ID]; !ok {
		return nil, fmt.Errorf("inventory item %d: %w", item.ID, repository.ErrNotFound)
	}
	c := *item
	c.UpdatedAt = now()
	r.t.rows[item.ID] = &c
	out := c
	return &out, nil
}

func (r *InventoryRepository) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return fmt.Errorf("inventory item %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

// RecipeRepository is an in-memory repository.RecipeRepository.
type RecipeRepository struct {
	t *table[models.Recipe]
}

// NewRecipeRepository creates an empty recipe catalog.
func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{t: newTable[models.Recipe]()}
}

func copyRecipe(r *models.Recipe) *models.Recipe {
	c := *r
	c.Ingredients = append([]models.Ingredient(nil), r.Ingredients...)
	return &c
}

func (r *RecipeRepository) Create(_ context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := copyRecipe(recipe)
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.t.insert(c, func(rc *models.Recipe, id int64) { rc.ID = id })
	return copyRecipe(c), nil
}

func (r *RecipeRepository) GetByID(_ context.Context, id int64) (*models.Recipe, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	rc, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	return copyRecipe(rc), nil
}

func (r *RecipeRepository) List(_ context.Context, householdID int64) ([]*models.Recipe, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.Recipe
	r.t.each(func(rc *models.Recipe) {
		if rc.HouseholdID == householdID {
			out = append(out, copyRecipe(rc))
		}
	})
	return out, nil
}

func (r *RecipeRepository) Update(_ context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[recipe.ID]; !ok {
		return nil, fmt.Errorf("recipe %d: %w", recipe.ID, repository.ErrNotFound)
	}
	c := copyRecipe(recipe)
	c.UpdatedAt = now()
	r.t.rows[recipe.ID] = c
	return copyRecipe(c), nil
}

func (r *RecipeRepository) Delete(_ context.Context, id int64) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return fmt.Errorf("recipe %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

// MealPlanRepository is an in-memory repository.MealPlanRepository.
type MealPlanRepository struct {
	t *table[models.MealPlan]
}

// NewMealPlanRepository creates an empty plan store.
func NewMealPlanRepository() *MealPlanRepository {
	return &MealPlanRepository{t: newTable[models.MealPlan]()}
}

func copyPlan(p *models.MealPlan) *models.MealPlan {
	c := *p
	c.Meals = make(map[string]models.PlannedMeal, len(p.Meals))
	for k, v := range p.Meals {
		c.Meals[k] = v
	}
	c.CategoryRequirements = make(map[string]int, len(p.CategoryRequirements))
	for k, v := range p.CategoryRequirements {
		c.CategoryRequirements[k] = v
	}
	c.MustIncludeRecipes = append([]int64(nil), p.MustIncludeRecipes...)
	c.UseUpItems = append([]int64(nil), p.UseUpItems...)
	return &c
}

func (r *MealPlanRepository) Create(_ context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	var dup bool
	r.t.each(func(p *models.MealPlan) {
		dup = dup || (p.HouseholdID == plan.HouseholdID && p.WeekStart == plan.WeekStart)
	})
	if dup {
		return nil, fmt.Errorf("meal plan for week %s already exists", plan.WeekStart)
	}
	c := copyPlan(plan)
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.t.insert(c, func(p *models.MealPlan, id int64) { p.ID = id })
	return copyPlan(c), nil
}

func (r *MealPlanRepository) GetByWeek(_ context.Context, householdID int64, weekStart civil.Date) (*models.MealPlan, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var found *models.MealPlan
	r.t.each(func(p *models.MealPlan) {
		if found == nil && p.HouseholdID == householdID && p.WeekStart == weekStart {
			found = copyPlan(p)
		}
	})
	return found, nil
}

func (r *MealPlanRepository) GetByID(_ context.Context, id int64) (*models.MealPlan, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	p, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	return copyPlan(p), nil
}

func (r *MealPlanRepository) Update(_ context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[plan.ID]; !ok {
		return nil, fmt.Errorf("meal plan %d: %w", plan.ID, repository.ErrNotFound)
	}
	c := copyPlan(plan)
	c.UpdatedAt = now()
	r.t.rows[plan.ID] = c
	return copyPlan(c), nil
}

// CategoryRepository is an in-memory repository.CategoryRepository.
type CategoryRepository struct {
	t *table[models.MealCategory]
}

// NewCategoryRepository creates an empty category store.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{t: newTable[models.MealCategory]()}
}

func (r *CategoryRepository) Create(_ context.Context, c *models.MealCategory) (*models.MealCategory, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	var existing *models.MealCategory
	r.t.each(func(m *models.MealCategory) {
		if m.HouseholdID == c.HouseholdID && m.Name == c.Name {
			existing = m
		}
	})
	if existing != nil {
		existing.SortOrder = c.SortOrder
		out := *existing
		return &out, nil
	}
	row := *c
	r.t.insert(&row, func(m *models.MealCategory, id int64) { m.ID = id })
	out := row
	return &out, nil
}

func (r *CategoryRepository) List(_ context.Context, householdID int64) ([]*models.MealCategory, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var out []*models.MealCategory
	r.t.each(func(m *models.MealCategory) {
		if m.HouseholdID == householdID {
			c := *m
			out = append(out, &c)
		}
	})
	return out, nil
}
