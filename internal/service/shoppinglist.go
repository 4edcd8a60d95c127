package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListHeader is the fixed first line of every exported list.
const ShoppingListHeader = "SHOPPING LIST:"

// ShoppingItem is one aggregated line of the export: an ingredient summed
// across every recipe in the user's cart.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

func (i ShoppingItem) String() string {
	return fmt.Sprintf("%s (%s) - %d", i.Name, i.MeasurementUnit, i.Amount)
}

// ShoppingListService aggregates cart contents and renders them as a
// downloadable document.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts across every recipe in the user's
// cart, grouped by (name, unit). A recipe carted twice cannot happen (the
// pair is unique) but the same ingredient in several recipes sums.
// Sorted by name so exports are deterministic.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN carts ON carts.recipe_id = recipe_ingredients.recipe_id").
		Where("carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RenderText renders the list as plain text: the header, a blank line,
// then one bulleted line per item. An empty cart yields the header only.
func (s *ShoppingListService) RenderText(items []ShoppingItem) []byte {
	var b strings.Builder
	b.WriteString(ShoppingListHeader + "\n")
	if len(items) > 0 {
		b.WriteString("\n")
	}
	for _, item := range items {
		b.WriteString("* " + item.String() + "\n")
	}
	return []byte(b.String())
}

// RenderPDF renders the list as a single A4 page: title line, then the
// bulleted body.
func (s *ShoppingListService) RenderPDF(items []ShoppingItem) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 0, 255)
	pdf.CellFormat(0, 12, ShoppingListHeader, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	for _, item := range items {
		pdf.CellFormat(0, 8, "* "+item.String(), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
