package cart

// Service orchestrates cart operations.
type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// AddItem merges qty into the cart line for productID. Negative quantities
// decrement; a line that drops to zero or below is removed.
func (s *Service) AddItem(key Key, productID, qty int) ([]Item, error) {
	if qty == 0 {
		return s.repo.Items(key)
	}

	// only check the catalog when the line can grow; decrements of
	// already-carted products must keep working even if the product
	// was pulled from sale meanwhile
	if qty > 0 {
		p, err := s.catalog.GetByID(productID)
		if err != nil || !p.Available {
			return nil, ErrProductNotFound
		}
	}

	return s.repo.AddItem(key, productID, qty)
}

func (s *Service) Items(key Key) ([]Item, error) {
	return s.repo.Items(key)
}

func (s *Service) Clear(key Key) error {
	return s.repo.Clear(key)
}
