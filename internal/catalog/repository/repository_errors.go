package repository

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrSKUAlreadyExists  = errors.New("sku already exists")
	ErrSlugAlreadyExists = errors.New("slug already exists")
	ErrCategoryInUse     = errors.New("category has products")
	ErrInsufficientStock = errors.New("insufficient stock")
)
