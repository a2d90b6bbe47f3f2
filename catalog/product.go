package catalog

// Product mirrors the upstream product resource. The server owns the source of
// truth; instances held client-side are snapshots that may be stale.
type Product struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Brand            string  `json:"brand"`
	Price            float64 `json:"price"`
	Category         string  `json:"category"`
	ReleaseDate      string  `json:"releaseDate,omitempty"`
	StockQuantity    int     `json:"stockQuantity"`
	ProductAvailable bool    `json:"productAvailable"`
	ImageName        string  `json:"imageName,omitempty"`
}

// InStock reports whether the product can currently be added to a cart.
func (p Product) InStock() bool {
	return p.ProductAvailable && p.StockQuantity > 0
}
