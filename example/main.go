package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TechXTT/easyorm"
)

type Order struct {
	Ref      uuid.UUID
	Customer string
	Total    decimal.Decimal
	Paid     bool
	PlacedAt time.Time
	Lines    []string
}

func main() {
	ctx := context.Background()

	// 1) Connect to the database
	db, err := easyorm.Open(ctx, "mysql", os.Getenv("DATABASE_URL"), easyorm.Options{})
	if err != nil {
		panic(fmt.Errorf("connect: %w", err))
	}
	defer db.Close()

	// 2) Create the table from the struct layout
	if outcome, err := easyorm.CreateTable[Order](ctx, db, "orders"); err != nil && outcome != easyorm.TableAlreadyExists {
		panic(fmt.Errorf("create table: %w", err))
	}

	// 3) Save an order
	order := Order{
		Ref:      uuid.New(),
		Customer: "Alice",
		Total:    decimal.RequireFromString("42.50"),
		Paid:     true,
		PlacedAt: time.Now().UTC().Truncate(time.Microsecond),
		Lines:    []string{"book", "pen"},
	}
	if _, err := easyorm.Save(ctx, db, "orders", order); err != nil {
		panic(fmt.Errorf("save: %w", err))
	}
	fmt.Printf("✅ Saved order %s\n", order.Ref)

	// 4) Read it back
	orders, err := easyorm.Retrieve[Order](ctx, db, "orders", 0, 10,
		&easyorm.Filter{Field: "Customer", Criterion: "Alice"})
	if err != nil {
		panic(fmt.Errorf("retrieve: %w", err))
	}
	for _, o := range orders {
		fmt.Printf("✅ Fetched order %s: %s %s %v\n", o.Ref, o.Customer, o.Total, o.Lines)
	}
}
