package database

import (
	"fmt"
	"log"

	"storefront-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sampleCategory struct {
	Name, Slug, Description string
}

type sampleProduct struct {
	Title, Slug, Description, Price string
	Stock                           int
	CategorySlug                    string
	ImageURL                        string
}

var sampleCategories = []sampleCategory{
	{"Électronique", "electronique", "Produits électroniques et gadgets"},
	{"Mode", "mode", "Vêtements et accessoires de mode"},
	{"Maison", "maison", "Articles pour la maison et le jardin"},
}

var sampleProducts = []sampleProduct{
	{"Smartphone Huawei P40", "smartphone-huawei-p40", "Smartphone haut de gamme avec appareil photo Leica, écran 6.1\", 128GB de stockage.", "599.99", 15, "electronique", "https://via.placeholder.com/300x200?text=Huawei+P40"},
	{"Écouteurs Bluetooth Xiaomi", "ecouteurs-bluetooth-xiaomi", "Écouteurs sans fil avec réduction de bruit active, autonomie 20h.", "89.99", 25, "electronique", "https://via.placeholder.com/300x200?text=Xiaomi+Earbuds"},
	{"Tablette Samsung Galaxy Tab", "tablette-samsung-galaxy-tab", "Tablette 10.1\" avec processeur octa-core, 64GB de stockage, Android 11.", "299.99", 8, "electronique", "https://via.placeholder.com/300x200?text=Samsung+Galaxy+Tab"},
	{"T-shirt en coton bio", "t-shirt-coton-bio", "T-shirt en coton biologique, coupe régulière, disponible en plusieurs couleurs.", "24.99", 50, "mode", "https://via.placeholder.com/300x200?text=T-shirt+Bio"},
	{"Sneakers casual", "sneakers-casual", "Sneakers confortables en cuir synthétique, semelle en caoutchouc, style urbain.", "79.99", 20, "mode", "https://via.placeholder.com/300x200?text=Sneakers+Casual"},
	{"Sac à dos léger", "sac-a-dos-leger", "Sac à dos 25L avec compartiments multiples, idéal pour le quotidien.", "45.99", 30, "mode", "https://via.placeholder.com/300x200?text=Sac+a+Dos"},
	{"Lampe de bureau LED", "lampe-bureau-led", "Lampe de bureau moderne avec éclairage LED réglable, design minimaliste.", "39.99", 12, "maison", "https://via.placeholder.com/300x200?text=Lampe+LED"},
	{"Coussin décoratif", "coussin-decoratif", "Coussin décoratif en velours, 40x40cm, plusieurs motifs disponibles.", "19.99", 35, "maison", "https://via.placeholder.com/300x200?text=Coussin+Decoratif"},
	{"Kit de jardinage", "kit-jardinage", "Kit complet de jardinage avec outils essentiels, idéal pour débutants.", "69.99", 10, "maison", "https://via.placeholder.com/300x200?text=Kit+Jardinage"},
	{"Cafetière programmable", "cafetiere-programmable", "Cafetière programmable 12 tasses avec minuterie et filtre permanent.", "89.99", 7, "maison", "https://via.placeholder.com/300x200?text=Cafetiere"},
}

// SeedSampleData loads the demo catalog. Rows are matched by slug, so running
// it again only adds what is missing.
func SeedSampleData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]models.Category, len(sampleCategories))
		for _, c := range sampleCategories {
			category := models.Category{Name: c.Name, Slug: c.Slug, Description: c.Description}
			res := tx.Where(models.Category{Slug: c.Slug}).FirstOrCreate(&category)
			if res.Error != nil {
				return fmt.Errorf("seed category %s: %w", c.Slug, res.Error)
			}
			if res.RowsAffected > 0 {
				log.Printf("Seeded category: %s", category.Name)
			}
			categories[c.Slug] = category
		}

		for _, p := range sampleProducts {
			product := models.Product{
				Title:       p.Title,
				Slug:        p.Slug,
				Description: p.Description,
				Price:       decimal.RequireFromString(p.Price),
				Stock:       p.Stock,
				CategoryID:  categories[p.CategorySlug].ID,
				ImageURL:    p.ImageURL,
				IsActive:    true,
			}
			res := tx.Where(models.Product{Slug: p.Slug}).FirstOrCreate(&product)
			if res.Error != nil {
				return fmt.Errorf("seed product %s: %w", p.Slug, res.Error)
			}
			if res.RowsAffected > 0 {
				log.Printf("Seeded product: %s - %s", product.Title, product.Price.StringFixed(2))
			}
		}
		return nil
	})
}
