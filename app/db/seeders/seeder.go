package seeders

import (
	"fmt"
	"log"

	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productSeed struct {
	Name        string
	Subcategory string
	Brand       string
	Price       int64
	Stock       int
	Featured    bool
	Sizes       []string
	Colors      []string
}

type categorySeed struct {
	Name          string
	Description   string
	Subcategories []string
	Products      []productSeed
}

var demoBrands = []string{"Modal Tela", "Andes Textil"}

var demoCatalog = []categorySeed{
	{
		Name:          "Mujer",
		Description:   "Ropa de mujer",
		Subcategories: []string{"Blusas", "Vestidos"},
		Products: []productSeed{
			{Name: "Blusa de lino", Subcategory: "Blusas", Brand: "Modal Tela", Price: 89000, Stock: 25, Featured: true, Sizes: []string{"S", "M", "L"}, Colors: []string{"blanco", "azul"}},
			{Name: "Vestido midi", Subcategory: "Vestidos", Brand: "Andes Textil", Price: 159000, Stock: 12, Sizes: []string{"S", "M"}, Colors: []string{"negro"}},
		},
	},
	{
		Name:          "Hombre",
		Description:   "Ropa de hombre",
		Subcategories: []string{"Camisas", "Pantalones"},
		Products: []productSeed{
			{Name: "Camisa oxford", Subcategory: "Camisas", Brand: "Modal Tela", Price: 99000, Stock: 30, Featured: true, Sizes: []string{"M", "L", "XL"}, Colors: []string{"azul", "blanco"}},
			{Name: "Pantalón chino", Subcategory: "Pantalones", Brand: "Andes Textil", Price: 129000, Stock: 18, Sizes: []string{"M", "L"}, Colors: []string{"gris", "negro"}},
		},
	},
}

// DBSeed loads a small demo catalog. Rows are matched by name, so running it
// twice does not duplicate anything.
func DBSeed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		brands := map[string]*models.Brand{}
		for _, name := range demoBrands {
			brand := &models.Brand{}
			if err := tx.Where(models.Brand{Name: name}).Attrs(models.Brand{IsActive: true}).FirstOrCreate(brand).Error; err != nil {
				return fmt.Errorf("seed brand %s: %w", name, err)
			}
			brands[name] = brand
		}

		for _, cs := range demoCatalog {
			category := &models.Category{}
			if err := tx.Where(models.Category{Name: cs.Name}).
				Attrs(models.Category{Description: cs.Description, IsActive: true}).
				FirstOrCreate(category).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", cs.Name, err)
			}

			subs := map[string]*models.Subcategory{}
			for _, name := range cs.Subcategories {
				sub := &models.Subcategory{}
				if err := tx.Where(models.Subcategory{CategoryID: category.ID, Name: name}).
					Attrs(models.Subcategory{IsActive: true}).
					FirstOrCreate(sub).Error; err != nil {
					return fmt.Errorf("seed subcategory %s: %w", name, err)
				}
				subs[name] = sub
			}

			for _, ps := range cs.Products {
				if err := seedProduct(tx, category, subs[ps.Subcategory], brands[ps.Brand], ps); err != nil {
					return err
				}
			}
		}
		log.Println("✅ Demo catalog seeded.")
		return nil
	})
}

func seedProduct(tx *gorm.DB, category *models.Category, sub *models.Subcategory, brand *models.Brand, ps productSeed) error {
	product := &models.Product{}
	attrs := models.Product{
		Price:      decimal.NewFromInt(ps.Price),
		Stock:      ps.Stock,
		IsActive:   true,
		IsFeatured: ps.Featured,
	}
	if sub != nil {
		attrs.SubcategoryID = &sub.ID
	}
	if brand != nil {
		attrs.BrandID = &brand.ID
	}
	if err := tx.Where(models.Product{CategoryID: category.ID, Name: ps.Name}).Attrs(attrs).FirstOrCreate(product).Error; err != nil {
		return fmt.Errorf("seed product %s: %w", ps.Name, err)
	}

	for _, size := range ps.Sizes {
		for _, color := range ps.Colors {
			variant := &models.ProductVariant{}
			if err := tx.Where(models.ProductVariant{ProductID: product.ID, Size: size, Color: color}).
				Attrs(models.ProductVariant{Stock: 5, PriceAdjustment: decimal.Zero}).
				FirstOrCreate(variant).Error; err != nil {
				return fmt.Errorf("seed variant %s %s/%s: %w", ps.Name, size, color, err)
			}
		}
	}
	return nil
}
