package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// Loads the ingredient catalog from a CSV file of "name,measurement_unit"
// rows. Rows that already exist are skipped, so re-running is safe.
func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGormDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	var ingredients []models.Ingredient
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse %s: %v", *path, err)
		}
		if record[0] == "" || record[1] == "" {
			log.Fatalf("Row %v has an empty name or measurement unit", record)
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}

	inserted, err := service.NewIngredientService(db).BulkUpsert(context.Background(), ingredients)
	if err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}
	log.Printf("Loaded %d of %d ingredients (%d already present)", inserted, len(ingredients), int64(len(ingredients))-inserted)
}
