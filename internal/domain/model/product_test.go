package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "classic-white-tee", Slugify("Classic White Tee"))
	assert.Equal(t, "50-off-sale", Slugify("50% Off Sale!"))
	assert.Equal(t, "abc", Slugify("  ABC  "))
}

func TestProductVariantChecks(t *testing.T) {
	p := Product{
		Sizes:  []string{"S", "M", "L"},
		Colors: []Color{{Name: "Black"}, {Name: "Red", Hex: "#ff0000"}},
	}

	assert.True(t, p.HasSize("M"))
	assert.False(t, p.HasSize("XL"))
	assert.True(t, p.HasColor("Red"))
	assert.False(t, p.HasColor("Blue"))
}

func TestProductMainImage(t *testing.T) {
	p := Product{Images: []string{"/a.jpg", "/b.jpg"}}
	assert.Equal(t, "/a.jpg", p.MainImage())

	empty := Product{}
	assert.Equal(t, "/logo.jpeg", empty.MainImage())
}

func TestCartLineID(t *testing.T) {
	item := CartItem{ProductID: "p1", Size: "M", Color: "Black"}
	assert.Equal(t, "p1|M|Black", item.LineID())
	assert.Equal(t, item.LineID(), CartLineID("p1", "M", "Black"))
}
