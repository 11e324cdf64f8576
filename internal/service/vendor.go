package service

import (
	"context"
	"errors"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/model"
)

type vendorLookup interface {
	GetByUserID(ctx context.Context, userID string) (*model.Vendor, error)
}

type VendorService struct {
	vendors vendorLookup
}

func NewVendorService(vendors vendorLookup) *VendorService {
	return &VendorService{vendors: vendors}
}

// CurrentVendor resolves the vendor account of an authenticated user. Users
// without one are forbidden from vendor routes.
func (s *VendorService) CurrentVendor(ctx context.Context, userID string) (*model.Vendor, error) {
	vendor, err := s.vendors.GetByUserID(ctx, userID)
	if err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == "VENDOR_NOT_FOUND" {
			return nil, errs.NewForbiddenError("A vendor account is required", true)
		}
		return nil, err
	}
	return vendor, nil
}
