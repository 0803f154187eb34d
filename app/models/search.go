package models

// SearchSeller is the nested seller object inside a search document.
type SearchSeller struct {
	ID         string `json:"id"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// SearchDocument is the flat projection indexed into Elasticsearch. It is
// keyed by the product id and replaced wholesale on every sync, so indexing
// the same snapshot twice is a no-op.
type SearchDocument struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category"`
	Price       float64      `json:"price"`
	Quantity    int          `json:"quantity"`
	Image       string       `json:"image,omitempty"`
	Seller      SearchSeller `json:"seller"`
}

// NewSearchDocument projects a denormalized product view into its search
// document. An uploaded image is indexed by its blob reference, an external
// image by its URL.
func NewSearchDocument(v ProductView) SearchDocument {
	image := v.Image
	if image == "" {
		image = v.ImageID
	}
	return SearchDocument{
		Title:       v.Title,
		Description: v.Description,
		Category:    v.Category,
		Price:       v.Price,
		Quantity:    v.Quantity,
		Image:       image,
		Seller: SearchSeller{
			ID:         v.Seller.ID,
			ProfileURL: v.Seller.ProfileURL,
		},
	}
}
