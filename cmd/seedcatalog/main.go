package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/Rajatpundir7/DBMS-AGRI/cmd/mainconfig"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	appconfig "github.com/Rajatpundir7/DBMS-AGRI/internal/config"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// seedcatalog loads the bundled product catalog into the products table.
func main() {
	_ = godotenv.Load()

	table := flag.String("table", "", "products table (defaults to PRODUCTS_TABLE)")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if *table != "" {
		cfg.ProductsTable = *table
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	products, err := catalog.SeedProducts()
	if err != nil {
		logger.Error("failed to load seed catalog", "error", err)
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	source := catalog.NewDynamoSource(dynamodb.NewFromConfig(awsCfg), cfg.ProductsTable, logger)
	if err := source.PutAll(ctx, products); err != nil {
		logger.Error("failed to seed products", "error", err, "table", cfg.ProductsTable)
		os.Exit(1)
	}
	logger.Info("product catalog seeded", "table", cfg.ProductsTable, "products", len(products))
}
