package merchant

import "errors"

// ErrMerchantNotFound indicates the merchant does not exist.
var ErrMerchantNotFound = errors.New("merchant not found")

// ErrCategoryNotFound indicates the merchant category does not exist.
var ErrCategoryNotFound = errors.New("merchant category not found")

// Category groups merchants, e.g. "Groceries".
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Merchant is immutable reference data receiving card payments.
type Merchant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}
