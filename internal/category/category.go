package category

// Category groups catalog products for browsing.
type Category struct {
	ID   int    `json:"categoryId"`
	Name string `json:"categoryName"`
	Slug string `json:"slug"`
}
