// Package catalog holds the static base catalog and the pure filtering logic
// applied to it after merging in seller-submitted products.
package catalog

import "nexbuy/internal/domain"

// Base returns the built-in catalog. Callers receive fresh copies, including
// the Colors and Specs collections, so the backing values are never mutated.
func Base() []domain.Product {
	out := make([]domain.Product, len(baseProducts))
	for i, p := range baseProducts {
		p.Colors = append([]string(nil), p.Colors...)
		if p.Specs != nil {
			specs := make(map[string]string, len(p.Specs))
			for k, v := range p.Specs {
				specs[k] = v
			}
			p.Specs = specs
		}
		out[i] = p
	}
	return out
}

// Merge appends seller products to the base catalog.
func Merge(sellerProducts []domain.Product) []domain.Product {
	merged := Base()
	return append(merged, sellerProducts...)
}

// Categories returns "All" followed by the distinct categories of the given
// products, in first-seen order.
func Categories(products []domain.Product) []string {
	cats := []string{"All"}
	seen := make(map[string]bool)
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	return cats
}

var baseProducts = []domain.Product{
	{
		ID:          "p1",
		Name:        "Nexbuy Crystal HD Projector",
		Price:       189.99,
		CostPrice:   110.00,
		Stock:       50,
		Category:    "Home Cinema",
		ImageURL:    "https://images.unsplash.com/photo-1535016120720-40c646bebbfc?auto=format&fit=crop&q=80&w=800",
		VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-projection-of-a-galaxy-on-a-wall-4416-large.mp4",
		Rating:      4.9,
		Description: `Turn any wall into a 120" 4K theater. Native 1080p, built-in apps, and ultra-portable design.`,
		IsNew:       true,
		Colors:      []string{"#FFFFFF", "#000000"},
		XPGain:      150,
		Specs:       map[string]string{"Resolution": "4K Native", "Brightness": "2500 Lumens", "Connectivity": "Wi-Fi 6, HDMI 2.1"},
	},
	{
		ID:          "p2",
		Name:        "AeroMist Portable Blender",
		Price:       44.95,
		CostPrice:   25.00,
		Stock:       50,
		Category:    "Kitchen",
		ImageURL:    "https://images.unsplash.com/photo-1570222094114-d054a817e56b?auto=format&fit=crop&q=80&w=800",
		Rating:      4.8,
		Description: "Smoothies anywhere, anytime. USB-C rechargeable with six stainless steel blades for ice crushing.",
		Colors:      []string{"#FF69B4", "#87CEEB", "#FFFFFF"},
		XPGain:      40,
		Specs:       map[string]string{"Battery": "4000mAh", "Blades": "6x Stainless Steel", "Capacity": "500ml"},
	},
	{
		ID:          "p3",
		Name:        "Lumina RGB Aura Bar",
		Price:       34.50,
		CostPrice:   20.00,
		Stock:       50,
		Category:    "Setup",
		ImageURL:    "https://images.unsplash.com/photo-1550745679-33d01608216a?auto=format&fit=crop&q=80&w=800",
		VideoURL:    "https://assets.mixkit.co/videos/preview/mixkit-abstract-glowing-neon-lines-3211-large.mp4",
		Rating:      4.7,
		Description: "Sync your lights to your screen or music. 16 million colors with smart app control.",
		IsNew:       true,
		XPGain:      30,
		Specs:       map[string]string{"Colors": "16.8 Million", "App": "Nexbuy Home", "Sync": "Audio Reactive"},
	},
	{
		ID:          "p4",
		Name:        "Nexus Key-Go Mechanical",
		Price:       89.00,
		CostPrice:   50.00,
		Stock:       50,
		Category:    "Gaming",
		ImageURL:    "https://images.unsplash.com/photo-1511467687858-23d96c32e4ae?auto=format&fit=crop&q=80&w=800",
		Rating:      4.9,
		Description: "Ultra-responsive wireless mechanical keyboard. Hot-swappable switches and PBT keycaps.",
		XPGain:      80,
		Specs:       map[string]string{"Switches": "Nexbuy Brown (Tactile)", "Battery": "Up to 200hrs", "Layout": "75% Compact"},
	},
	{
		ID:          "p5",
		Name:        "ErgoRest Memory Pillow",
		Price:       59.99,
		CostPrice:   35.00,
		Stock:       50,
		Category:    "Sleep",
		ImageURL:    "https://images.unsplash.com/photo-1632174012028-11993f43372c?auto=format&fit=crop&q=80&w=800",
		Rating:      4.6,
		Description: "The last pillow you will ever buy. Cooling gel technology and orthopedic neck support.",
		XPGain:      60,
		Specs:       map[string]string{"Material": "AeroGel Memory Foam", "Cover": "Bamboo Fiber", "Firmness": "Medium-Soft"},
	},
	{
		ID:          "p6",
		Name:        "Zenith 4K DashCam Pro",
		Price:       129.00,
		CostPrice:   75.00,
		Stock:       50,
		Category:    "Auto",
		ImageURL:    "https://images.unsplash.com/photo-1549488344-1f9b8d2bd1f3?auto=format&fit=crop&q=80&w=800",
		Rating:      4.9,
		Description: "Peace of mind on every drive. Night vision, GPS tracking, and instant mobile backup.",
		XPGain:      120,
		Specs:       map[string]string{"Video": "4K @ 30FPS", "Sensor": "Sony STARVIS", "Storage": "Up to 256GB"},
	},
}
