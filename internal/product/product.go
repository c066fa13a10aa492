package product

// Product is a catalog entry managed by a seller. Price is stored in minor
// currency units (cents) so order math never touches floating point.
type Product struct {
	ID          int    `json:"productId"`
	SellerID    int    `json:"sellerId"`
	CategoryID  int    `json:"categoryId,omitempty"`
	Name        string `json:"productName"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Available   bool   `json:"available"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}
