package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/database"
	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/service"
)

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagFixture struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// Seeds the catalog tables from JSON fixture files. Rows that already
// exist are skipped, so reruns are safe.
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "Ingredients fixture file")
	tagsPath := flag.String("tags", "data/tags.json", "Tags fixture file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	var ingredients []ingredientFixture
	if err := readFixture(*ingredientsPath, &ingredients); err != nil {
		log.Fatalf("Failed to read ingredients fixture: %v", err)
	}
	seeded := 0
	for _, f := range ingredients {
		err := catalog.CreateIngredient(ctx, &models.Ingredient{
			Name:            f.Name,
			MeasurementUnit: f.MeasurementUnit,
		})
		if err == service.ErrAlreadyExists {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to seed ingredient %q: %v", f.Name, err)
		}
		seeded++
	}
	log.Printf("Seeded %d ingredients (%d in fixture)", seeded, len(ingredients))

	var tags []tagFixture
	if err := readFixture(*tagsPath, &tags); err != nil {
		log.Printf("Skipping tags: %v", err)
		return
	}
	seeded = 0
	for _, f := range tags {
		err := catalog.CreateTag(ctx, &models.Tag{Name: f.Name, Slug: f.Slug, Color: f.Color})
		if err == service.ErrAlreadyExists {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to seed tag %q: %v", f.Name, err)
		}
		seeded++
	}
	log.Printf("Seeded %d tags (%d in fixture)", seeded, len(tags))
}

func readFixture(path string, out interface{}) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
