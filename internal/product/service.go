package product

import "errors"

// ErrForbidden is returned when a seller touches a product they do not own.
var ErrForbidden = errors.New("product belongs to another seller")

// ServiceInterface is the part of the product service other packages use.
type ServiceInterface interface {
	GetByID(id int) (Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListAvailable(categoryID int) []Product {
	return s.repo.ListAvailable(categoryID)
}

func (s *Service) ListBySeller(sellerID int) []Product {
	return s.repo.ListBySeller(sellerID)
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(sellerID int, p Product) (Product, error) {
	if p.Name == "" || p.Price < 0 || p.Stock < 0 {
		return Product{}, errors.New("invalid product")
	}
	p.SellerID = sellerID
	return s.repo.Create(p)
}

func (s *Service) Update(sellerID, id int, p Product) (Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return Product{}, err
	}
	if existing.SellerID != sellerID {
		return Product{}, ErrForbidden
	}
	p.SellerID = existing.SellerID
	return s.repo.Update(id, p)
}

func (s *Service) Delete(sellerID, id int) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing.SellerID != sellerID {
		return ErrForbidden
	}
	return s.repo.Delete(id)
}
