package domain

import (
	"regexp"
	"strings"
	"time"

	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// DefaultOfferPrice is stored when a product is created without an offer price.
const DefaultOfferPrice = "0"

// Specification is a named group of detail lines, e.g. "Display".
type Specification struct {
	Name    string   `json:"name" bson:"name"`
	Details []string `json:"details" bson:"details"`
}

// Product is a catalog item. Prices and stock counters are kept as the
// strings the admin console submits. Category fields are plain names and are
// not kept in sync with the category tree.
type Product struct {
	ProductID             string          `json:"productId" bson:"productId"`
	CategoryName          string          `json:"categoryName" bson:"categoryName"`
	SubCategoryName       string          `json:"subCategoryName" bson:"subCategoryName"`
	SubSubCategoryName    string          `json:"subSubCategoryName" bson:"subSubCategoryName"`
	Level3SubCategoryName string          `json:"level3subCategoryName" bson:"level3subCategoryName"`
	Level4SubCategoryName string          `json:"level4subCategoryName" bson:"level4subCategoryName"`
	Title                 string          `json:"title" bson:"title"`
	Brand                 string          `json:"brand" bson:"brand"`
	BrandImage            string          `json:"brandimage" bson:"brandimage"`
	ModelNumber           string          `json:"modelNumber" bson:"modelNumber"`
	Price                 string          `json:"price" bson:"price"`
	Discount              string          `json:"discount" bson:"discount"`
	OfferPrice            string          `json:"offerPrice" bson:"offerPrice"`
	InStockAvailable      string          `json:"inStockAvailable" bson:"inStockAvailable"`
	SoldOutStock          string          `json:"soldOutStock" bson:"soldOutStock"`
	FullTitleDescription  []string        `json:"fullTitleDescription" bson:"fullTitleDescription"`
	FullDescription       string          `json:"fullDescription" bson:"fullDescription"`
	Specifications        []Specification `json:"specifications" bson:"specifications"`
	Images                []string        `json:"images" bson:"images"`
	ProductThumbnailImage string          `json:"productthumbnailimage" bson:"productthumbnailimage"`
	Active                bool            `json:"active" bson:"active"`
	IsDraft               bool            `json:"isdraft" bson:"isdraft"`
	CreatedAt             time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt" bson:"updatedAt"`
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits a multi-line text field into its lines. Empty input
// yields an empty slice.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return lineBreak.Split(s, -1)
}

// Normalize applies the storage defaults: nil slices become empty, a missing
// offer price becomes "0", and inactive products carry no stock.
func (p *Product) Normalize() {
	if p.OfferPrice == "" {
		p.OfferPrice = DefaultOfferPrice
	}
	if p.FullTitleDescription == nil {
		p.FullTitleDescription = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = []Specification{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if !p.Active {
		p.InStockAvailable = "0"
		p.SoldOutStock = "0"
	}
}

// Validate checks the required fields. Drafts only need a model number, title
// and brand; published products also need a category, a price and images.
func (p *Product) Validate() error {
	return p.ValidatePending(false, false)
}

// ValidatePending is Validate for a product whose images or thumbnail are
// about to be uploaded and are therefore not yet set.
func (p *Product) ValidatePending(pendingImages, pendingThumbnail bool) error {
	missing := p.missingBase()
	if !p.IsDraft {
		missing = append(missing, p.missingForPublish(pendingImages, pendingThumbnail)...)
	}
	return missingError(missing)
}

// ValidateActivation checks that a product is complete enough to be shown.
func (p *Product) ValidateActivation() error {
	if p.IsDraft {
		return apperrors.InvalidInput("a draft product cannot be activated; publish it first")
	}
	missing := append(p.missingBase(), p.missingForPublish(false, false)...)
	if len(missing) > 0 {
		return apperrors.InvalidInput("product cannot be activated, missing: " + strings.Join(missing, ", "))
	}
	return nil
}

func (p *Product) missingBase() []string {
	var missing []string
	if strings.TrimSpace(p.ModelNumber) == "" {
		missing = append(missing, "modelNumber")
	}
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(p.Brand) == "" {
		missing = append(missing, "brand")
	}
	return missing
}

func (p *Product) missingForPublish(pendingImages, pendingThumbnail bool) []string {
	var missing []string
	if strings.TrimSpace(p.CategoryName) == "" {
		missing = append(missing, "categoryName")
	}
	if strings.TrimSpace(p.Price) == "" {
		missing = append(missing, "price")
	}
	if len(p.Images) == 0 && !pendingImages {
		missing = append(missing, "images")
	}
	if p.ProductThumbnailImage == "" && !pendingThumbnail {
		missing = append(missing, "productthumbnailimage")
	}
	return missing
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return apperrors.InvalidInput("missing required fields: " + strings.Join(missing, ", "))
}

// ToggleActive flips the active flag. Activation requires a complete,
// published product; deactivation zeroes the stock counters.
func (p *Product) ToggleActive(now time.Time) error {
	if !p.Active {
		if err := p.ValidateActivation(); err != nil {
			return err
		}
	}
	p.Active = !p.Active
	if !p.Active {
		p.InStockAvailable = "0"
		p.SoldOutStock = "0"
	}
	p.UpdatedAt = now
	return nil
}

// RemoveImages drops every image URL listed in urls and returns the ones that
// were actually attached to the product.
func (p *Product) RemoveImages(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		drop[u] = struct{}{}
	}

	var removed []string
	kept := p.Images[:0]
	for _, img := range p.Images {
		if _, ok := drop[img]; ok {
			removed = append(removed, img)
			continue
		}
		kept = append(kept, img)
	}
	p.Images = kept
	return removed
}
