package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/middleware"
	"github.com/deppfellow/go-marketplace/internal/model"
)

type vendorResolver interface {
	CurrentVendor(ctx context.Context, userID string) (*model.Vendor, error)
}

func currentUserID(c echo.Context) (string, error) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return "", errs.NewUnauthorizedError("Unauthorized", false)
	}
	return userID, nil
}

// currentVendor resolves the caller's vendor account.
func currentVendor(c echo.Context, vendors vendorResolver) (*model.Vendor, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	return vendors.CurrentVendor(c.Request().Context(), userID)
}
