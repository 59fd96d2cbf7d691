package model

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultProductImage = "/logo.jpeg"

type Product struct {
	ProductID   string          `gorm:"primaryKey;type:varchar(255)" json:"product_id"`
	Name        string          `gorm:"not null;type:varchar(100)" json:"name"`
	Slug        string          `gorm:"not null;type:varchar(120);unique" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock       uint            `gorm:"not null;type:int" json:"stock"`
	Sizes       []string        `gorm:"serializer:json" json:"sizes"`
	Colors      []Color         `gorm:"serializer:json" json:"colors"`
	Category    string          `gorm:"not null;type:varchar(50)" json:"category"`
	Tags        []string        `gorm:"serializer:json" json:"tags"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	IsFeatured  bool            `gorm:"not null;default:false" json:"is_featured"`
	BaseModel
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由商品名稱產生 slug
func Slugify(name string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// BeforeSave slug 未設定時由名稱自動產生
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" && p.Name != "" {
		p.Slug = Slugify(p.Name)
	}
	return nil
}

// HasSize 檢查尺寸是否在商品允許範圍內
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// HasColor 檢查顏色是否在商品允許範圍內，以名稱比對
func (p *Product) HasColor(name string) bool {
	for _, c := range p.Colors {
		if c.Name == name {
			return true
		}
	}
	return false
}

// MainImage 商品主圖，沒有圖片時回傳預設圖
func (p *Product) MainImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return defaultProductImage
}
