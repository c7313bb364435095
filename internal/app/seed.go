package app

import (
	"context"
	"log/slog"

	"go-shop-api/internal/model"
	"go-shop-api/internal/service"
)

var demoCatalog = []model.ProductRequest{
	{Name: "Pour-Over Coffee Kettle", Description: "Gooseneck kettle with built-in thermometer", Category: "Kitchen", PriceCents: 4599, Stock: 25},
	{Name: "Burr Coffee Grinder", Description: "Conical burr grinder with 40 grind settings", Category: "Kitchen", PriceCents: 12900, Stock: 12},
	{Name: "Stoneware Mug", Description: "350 ml hand-glazed mug", Category: "Kitchen", PriceCents: 1450, Stock: 120},
	{Name: "Trail Running Shoes", Description: "Lightweight shoes with aggressive grip", Category: "Outdoor", PriceCents: 11900, Stock: 30},
	{Name: "Insulated Water Bottle", Description: "750 ml, keeps drinks cold for 24 hours", Category: "Outdoor", PriceCents: 2999, Stock: 80},
	{Name: "Mechanical Keyboard", Description: "Tenkeyless keyboard with hot-swappable switches", Category: "Electronics", PriceCents: 8900, Stock: 15},
	{Name: "USB-C Charging Cable", Description: "2 m braided cable, 100 W", Category: "Electronics", PriceCents: 1299, Stock: 200},
	{Name: "Paperback Notebook", Description: "A5 dotted notebook, 160 pages", Category: "Stationery", PriceCents: 899, Stock: 0},
}

// seedCatalog fills an empty catalog with demo products. A catalog that
// already holds products is left untouched.
func seedCatalog(ctx context.Context, catalog *service.CatalogService) error {
	_, meta, err := catalog.List(ctx, model.ProductFilter{Limit: 1})
	if err != nil {
		return err
	}
	if meta.Total > 0 {
		return nil
	}

	for _, req := range demoCatalog {
		if _, err := catalog.Create(ctx, req); err != nil {
			return err
		}
	}

	slog.Info("demo catalog seeded", "products", len(demoCatalog))
	return nil
}
