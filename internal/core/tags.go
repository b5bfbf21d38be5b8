package core

import (
	"math/rand/v2"
	"strings"
)

// FallbackTagColor is returned for tags without a stored color.
const FallbackTagColor = "#999999"

type TagColor struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultTags is the palette seeded on first run, in display order.
var DefaultTags = []TagColor{
	{Name: "Groceries", Color: "#FF6B6B"},
	{Name: "Rent/Mortgage", Color: "#4ECDC4"},
	{Name: "Utilities", Color: "#45B7D1"},
	{Name: "Transportation", Color: "#FFA07A"},
	{Name: "Healthcare", Color: "#98D8C8"},
	{Name: "Insurance", Color: "#F7DC6F"},
	{Name: "Dining Out", Color: "#FF7F50"},
	{Name: "Entertainment", Color: "#9B59B6"},
	{Name: "Subscriptions", Color: "#3498DB"},
	{Name: "Shopping", Color: "#E74C3C"},
	{Name: "Hobbies", Color: "#2ECC71"},
}

// DefaultTagColor returns the built-in color for one of the default tags.
func DefaultTagColor(name string) (string, bool) {
	for _, t := range DefaultTags {
		if t.Name == name {
			return t.Color, true
		}
	}
	return "", false
}

const hexDigits = "0123456789ABCDEF"

// RandomColor returns a random #RRGGBB color.
func RandomColor() string {
	var b strings.Builder
	b.WriteByte('#')
	for range 6 {
		b.WriteByte(hexDigits[rand.IntN(len(hexDigits))])
	}
	return b.String()
}
