// Command seed loads the simulator's stock catalog into the database.
package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"finconnect/internal/config"
	"finconnect/internal/db"
	"finconnect/internal/model"
	"finconnect/internal/repository"
)

var catalog = []model.Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", BasePrice: decimal.NewFromInt(180), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "TSLA", Name: "Tesla, Inc.", BasePrice: decimal.NewFromInt(250), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "MSFT", Name: "Microsoft Corp.", BasePrice: decimal.NewFromInt(310), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "GOOG", Name: "Alphabet Inc.", BasePrice: decimal.NewFromInt(140), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "AMZN", Name: "Amazon.com, Inc.", BasePrice: decimal.NewFromInt(130), Volatility: decimal.NewFromFloat(0.01)},
}

func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.Stock{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	stocks := repository.NewStockRepository(gormDB)
	ctx := context.Background()
	for i := range catalog {
		if err := stocks.Upsert(ctx, &catalog[i]); err != nil {
			log.Fatalf("seed %s: %v", catalog[i].Symbol, err)
		}
		log.Printf("seeded %s (%s)", catalog[i].Symbol, catalog[i].Name)
	}
}
