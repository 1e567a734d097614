package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/grocery"
	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/mealplan"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/recipe"
	"github.com/Kerhoff/hearth/internal/repository"
)

// Repositories bundles the stores a Service works over.
type Repositories struct {
	Users      repository.UserRepository
	Households repository.HouseholdRepository
	Tasks      repository.TaskRepository
	Shopping   repository.ShoppingRepository
	Inventory  repository.InventoryRepository
	Recipes    repository.RecipeRepository
	Locations  repository.LocationRepository
	MealPlans  repository.MealPlanRepository
	Categories repository.CategoryRepository
	Agenda     repository.AgendaRepository
}

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the application.
type Service struct {
	logger     *logrus.Logger
	Users      repository.UserRepository
	Households repository.HouseholdRepository
	Tasks      repository.TaskRepository
	Shopping   repository.ShoppingRepository
	Inventory  repository.InventoryRepository
	Recipes    repository.RecipeRepository
	Locations  repository.LocationRepository
	MealPlans  repository.MealPlanRepository
	Categories repository.CategoryRepository
	Agenda     repository.AgendaRepository

	matcher ingredient.Matcher
	engine  *mealplan.Engine
	grocery *grocery.Generator
	clipper *recipe.Clipper
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithMatcher replaces the fuzzy ingredient matcher used for inventory checks.
func WithMatcher(m ingredient.Matcher) Option {
	return func(s *Service) { s.matcher = m }
}

// WithClipper sets the client used to import recipes from URLs.
func WithClipper(c *recipe.Clipper) Option {
	return func(s *Service) { s.clipper = c }
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, repos Repositories, opts ...Option) *Service {
	s := &Service{
		logger:     logger,
		Users:      repos.Users,
		Households: repos.Households,
		Tasks:      repos.Tasks,
		Shopping:   repos.Shopping,
		Inventory:  repos.Inventory,
		Recipes:    repos.Recipes,
		Locations:  repos.Locations,
		MealPlans:  repos.MealPlans,
		Categories: repos.Categories,
		Agenda:     repos.Agenda,
		matcher:    ingredient.NewFuzzy(),
		now:        time.Now,
		loc:        time.UTC,
	}
	for _, o := range opts {
		o(s)
	}
	s.engine = mealplan.NewEngine(s.matcher)
	s.grocery = grocery.NewGenerator(s.matcher)
	return s
}

// Now returns the current time in the service's zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current date in the service's zone.
func (s *Service) Today() civil.Date {
	return civil.DateOf(s.Now())
}

// Location returns the zone dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// EnsureUser retrieves an existing user by Telegram ID, or creates a new one
// if not found. If the user already exists but their profile information has
// changed (username, first name, last name), it updates the record.
func (s *Service) EnsureUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	user, err := s.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (telegram_id=%d): %w", telegramID, err)
	}
	if user == nil {
		user, err = s.Users.Create(ctx, &models.User{
			TelegramID:       telegramID,
			TelegramUsername: username,
			FirstName:        firstName,
			LastName:         lastName,
			IsActive:         true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user (telegram_id=%d): %w", telegramID, err)
		}
		s.logger.Infof("Created new user: %s (telegram_id=%d)", user.DisplayName(), telegramID)
		return user, nil
	}

	if user.TelegramUsername == username && user.FirstName == firstName && user.LastName == lastName {
		return user, nil
	}
	user.TelegramUsername, user.FirstName, user.LastName = username, firstName, lastName
	user, err = s.Users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user (telegram_id=%d): %w", telegramID, err)
	}
	s.logger.Infof("Updated user profile: %s (telegram_id=%d)", user.DisplayName(), telegramID)
	return user, nil
}

// EnsureHousehold retrieves the household for the given chat ID, or creates
// one and seeds its default meal categories. If the chat title has changed,
// the household name is updated accordingly.
func (s *Service) EnsureHousehold(ctx context.Context, chatID int64, chatTitle string) (*models.Household, error) {
	chatTitle = strings.TrimSpace(chatTitle)

	h, err := s.Households.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup household (chat_id=%d): %w", chatID, err)
	}
	if h == nil {
		h, err = s.Households.Create(ctx, &models.Household{
			ChatID:   chatID,
			Name:     chatTitle,
			Timezone: s.loc.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create household for chat %d: %w", chatID, err)
		}
		if err := s.seedCategories(ctx, h.ID); err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{"household_id": h.ID, "chat_id": chatID}).
			Infof("Created new household %q", chatTitle)
		return h, nil
	}

	if chatTitle != "" && h.Name != chatTitle {
		h.Name = chatTitle
		h, err = s.Households.Update(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("failed to update household for chat %d: %w", chatID, err)
		}
		s.logger.Infof("Updated household name to %q (household_id=%d)", chatTitle, h.ID)
	}
	return h, nil
}

func (s *Service) seedCategories(ctx context.Context, householdID int64) error {
	for i, name := range models.DefaultMealCategories {
		_, err := s.Categories.Create(ctx, &models.MealCategory{HouseholdID: householdID, Name: name, SortOrder: i})
		if err != nil {
			return fmt.Errorf("failed to seed category %q for household %d: %w", name, householdID, err)
		}
	}
	return nil
}

// EnsureMember makes sure the given user belongs to the household. New
// members are added with the "member" role.
func (s *Service) EnsureMember(ctx context.Context, householdID, userID int64) error {
	members, err := s.Households.GetMembers(ctx, householdID)
	if err != nil {
		return fmt.Errorf("failed to get members for household %d: %w", householdID, err)
	}
	for _, m := range members {
		if m.ID == userID {
			return nil
		}
	}
	if err := s.Households.AddMember(ctx, householdID, userID, "member"); err != nil {
		return fmt.Errorf("failed to add user %d to household %d: %w", userID, householdID, err)
	}
	s.logger.Infof("Added user %d to household %d", userID, householdID)
	return nil
}

// MealCategories lists the household's recipe categories.
func (s *Service) MealCategories(ctx context.Context, householdID int64) ([]*models.MealCategory, error) {
	cats, err := s.Categories.List(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories for household %d: %w", householdID, err)
	}
	return cats, nil
}
