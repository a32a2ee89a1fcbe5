package catalogfake

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/catalog"
)

type demoRow struct {
	name   string
	parent string
	sub    string
	price  string
	rating float64
	blurb  string
}

var demoRows = []demoRow{
	{"Studio Headphones", "Electronics", "sub-audio", "189.00", 4.6, "Closed-back monitoring headphones with a **flat** response."},
	{"Bookshelf Speakers", "Electronics", "sub-audio", "249.99", 4.4, "A pair of passive speakers.\n\n- 5\" woofer\n- silk dome tweeter"},
	{"Portable Speaker", "Electronics", "sub-audio", "59.50", 4.1, "Splash-proof and loud enough for a picnic."},
	{"Mirrorless Camera", "Electronics", "sub-cameras", "1299.00", 4.8, "24MP sensor, *in-body* stabilization."},
	{"Instant Camera", "Electronics", "sub-cameras", "89.00", 4.0, "Prints credit-card sized photos in seconds."},
	{"Action Camera", "Electronics", "sub-cameras", "329.00", 4.3, "4K60 in a waterproof shell."},
	{"Arc Floor Lamp", "Home", "sub-lighting", "145.00", 4.2, "Brushed steel arc with a linen shade."},
	{"Desk Lamp", "Home", "sub-lighting", "39.90", 3.9, "Adjustable arm, warm LED."},
	{"Pendant Light", "Home", "sub-lighting", "210.00", 4.5, "Hand-blown glass pendant."},
	{"Chef Knife", "Home", "sub-kitchen", "74.00", 4.7, "8\" carbon steel. Hand wash only."},
	{"Cast Iron Skillet", "Home", "sub-kitchen", "32.00", 4.9, "Pre-seasoned, 10 inch."},
	{"Pour-Over Kettle", "Home", "sub-kitchen", "55.00", 4.3, "Gooseneck spout for controlled pours."},
	{"Two-Person Tent", "Outdoors", "sub-camping", "219.00", 4.4, "Freestanding, 1.8 kg packed."},
	{"Sleeping Bag", "Outdoors", "sub-camping", "129.00", 4.1, "Rated to -5 C."},
	{"Camp Stove", "Outdoors", "sub-camping", "49.00", 4.6, "Canister stove, boils a litre in 3 minutes."},
	{"Headlamp", "Outdoors", "sub-camping", "24.99", 4.0, "350 lumens, USB-C."},
	{"Trail Backpack", "Outdoors", "sub-hiking", "159.00", 4.5, "38 litres with a ventilated back panel."},
	{"Trekking Poles", "Outdoors", "sub-hiking", "69.00", 4.2, "Carbon, flick-lock."},
}

// DemoCatalog returns a small, deterministic product set and category tree.
func DemoCatalog() ([]catalog.Product, []catalog.Category) {
	parentIDs := map[string]string{
		"Electronics": "cat-electronics",
		"Home":        "cat-home",
		"Outdoors":    "cat-outdoors",
	}
	categories := []catalog.Category{
		parent("cat-electronics", "Electronics", sub("sub-audio", "Audio", "cat-electronics"), sub("sub-cameras", "Cameras", "cat-electronics")),
		parent("cat-home", "Home", sub("sub-lighting", "Lighting", "cat-home"), sub("sub-kitchen", "Kitchen", "cat-home")),
		parent("cat-outdoors", "Outdoors", sub("sub-camping", "Camping", "cat-outdoors"), sub("sub-hiking", "Hiking", "cat-outdoors")),
	}

	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	products := make([]catalog.Product, 0, len(demoRows))
	for i, row := range demoRows {
		created := base.Add(time.Duration(i) * 36 * time.Hour)
		status := "Active"
		if i%7 == 6 {
			status = "Out of stock"
		}
		products = append(products, catalog.Product{
			ID:            fmt.Sprintf("prod-%02d", i+1),
			Name:          row.name,
			Description:   fmt.Sprintf("# %s\n\n%s", row.name, row.blurb),
			Price:         decimal.RequireFromString(row.price),
			Image:         fmt.Sprintf("https://cdn.example.com/%s/%02d.jpg", parentIDs[row.parent], i+1),
			CategoryName:  row.parent,
			SubCategoryID: row.sub,
			Rating:        row.rating,
			Status:        status,
			CreatedAt:     created,
			UpdatedAt:     created,
		})
	}
	return products, categories
}

func parent(id, name string, subs ...catalog.Category) catalog.Category {
	return catalog.Category{ID: id, Name: name, Subcategories: subs}
}

func sub(id, name, parentID string) catalog.Category {
	p := parentID
	return catalog.Category{ID: id, Name: name, ParentID: &p}
}
