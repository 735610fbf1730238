package main

import (
	"context"
	"errors"
	"flag"

	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/database"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/types"
)

const seedPassword = "password123"

type seedRecipe struct {
	Title        string
	Description  string
	CookingTime  string
	Difficulty   string
	Servings     string
	Ingredients  string
	Instructions string
}

var seedUsers = map[string][]seedRecipe{
	"chef_ana": {
		{"Cacio e Pepe", "Roman pasta with pecorino and black pepper", "20 minutes", "Medium", "2", "spaghetti, pecorino romano, black pepper", "Toast pepper, cook pasta, emulsify cheese with pasta water"},
		{"Slow Roasted Lamb", "Shoulder roasted with garlic and rosemary", "4 hours", "Hard", "6", "lamb shoulder, garlic, rosemary, olive oil", "Season, roast low and slow, rest before carving"},
		{"Caprese Salad", "Tomato, mozzarella and basil", "10 min", "Easy", "2", "tomatoes, mozzarella, basil, olive oil", "Slice, layer, season"},
	},
	"baker_ben": {
		{"Sourdough Loaf", "Naturally leavened country bread", "24 hours", "Hard", "1 loaf", "flour, water, salt, starter", "Mix, bulk ferment, shape, proof overnight, bake"},
		{"Banana Bread", "Moist loaf with brown butter", "1 hour 10 minutes", "Easy", "8", "bananas, flour, brown butter, sugar, eggs", "Mash, mix, bake at 175C"},
	},
	"quick_quinn": {
		{"Avocado Toast", "Crushed avocado on sourdough", "5 minutes", "easy", "1", "bread, avocado, lemon, chilli flakes", "Toast, crush, season"},
		{"Egg Fried Rice", "Leftover rice with egg and scallion", "15 mins", "Easy", "2", "rice, eggs, scallions, soy sauce", "Scramble eggs, fry rice, combine"},
		{"Miso Soup", "Dashi with miso and tofu", "12 minutes", "easy", "2", "dashi, miso, tofu, wakame", "Heat dashi, dissolve miso, add tofu"},
	},
}

func main() {
	likes := flag.Bool("likes", true, "have every seeded user like every other user's recipes")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.Component("seed")

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// seeded recipes carry no images, so no blob store is needed
	authService := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	resolver := service.NewResolver(db, nil)
	accounts := service.NewAccountService(db, authService, nil, resolver, cfg.Storage.ProfileFolder)
	recipes := service.NewRecipeService(db, nil, nil, cfg.Storage.RecipeFolder)
	social := service.NewSocialService(db)
	engagement := service.NewEngagementService(db)

	ctx := context.Background()
	users := make(map[string]*model.User, len(seedUsers))
	for username := range seedUsers {
		user, err := ensureUser(ctx, accounts, username)
		if err != nil {
			log.Fatal().Err(err).Str("username", username).Msg("failed to seed user")
		}
		users[username] = user
	}

	var created []*model.Recipe
	for username, list := range seedUsers {
		owner := users[username]
		existing, err := recipes.ListByOwner(ctx, owner.ID)
		if err != nil {
			log.Fatal().Err(err).Str("username", username).Msg("failed to list recipes")
		}
		if len(existing) > 0 {
			log.Info().Str("username", username).Int("recipes", len(existing)).Msg("partition already seeded")
			continue
		}
		for _, r := range list {
			recipe, err := recipes.Create(ctx, owner.ID, r.fields(), nil)
			if err != nil {
				log.Fatal().Err(err).Str("title", r.Title).Msg("failed to create recipe")
			}
			created = append(created, recipe)
		}
	}

	for _, a := range users {
		for _, b := range users {
			if a.ID == b.ID {
				continue
			}
			if err := social.Follow(ctx, a.ID, b.ID); err != nil {
				log.Fatal().Err(err).Msg("failed to seed follow edge")
			}
		}
	}

	if *likes {
		for _, recipe := range created {
			for _, u := range users {
				if u.ID == recipe.OwnerID {
					continue
				}
				if _, err := engagement.Like(ctx, recipe.OwnerID, recipe.ID, u.ID); err != nil {
					log.Fatal().Err(err).Str("recipe_id", recipe.ID.String()).Msg("failed to seed like")
				}
			}
		}
	}

	log.Info().Int("users", len(users)).Int("recipes", len(created)).Msg("seed complete")
}

func ensureUser(ctx context.Context, accounts *service.AccountService, username string) (*model.User, error) {
	user, err := accounts.Register(ctx, types.RegisterRequest{
		Username: username,
		Email:    username + "@mealshare.local",
		Password: seedPassword,
	})
	if errors.Is(err, service.ErrConflict) {
		return accounts.GetByUsername(ctx, username)
	}
	return user, err
}

func (r seedRecipe) fields() types.RecipeFields {
	return types.RecipeFields{
		Title:        &r.Title,
		Description:  &r.Description,
		CookingTime:  &r.CookingTime,
		Difficulty:   &r.Difficulty,
		Servings:     &r.Servings,
		Ingredients:  &r.Ingredients,
		Instructions: &r.Instructions,
	}
}
