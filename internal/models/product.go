package models

import "gorm.io/gorm"

// Product represents a catalog product.
//
// PhotoData and PhotoContentType hold the optional uploaded image. List and
// search queries omit the photo columns, so the omitempty tags keep the blob
// out of those responses while the create/update responses still include it.
type Product struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name             string    `json:"name" validate:"required,min=3,max=100"`
	Description      string    `json:"description" validate:"omitempty,max=2000"`
	Price            float64   `json:"price" validate:"gte=0"`
	CategoryID       string    `json:"category_id" gorm:"type:varchar(36);index"`
	Category         *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Quantity         int       `json:"quantity" validate:"gte=0"`
	Sold             int       `json:"sold"`
	Shipping         bool      `json:"shipping"`
	PhotoData        []byte    `json:"photo_data,omitempty" gorm:"column:photo_data"`
	PhotoContentType string    `json:"photo_content_type,omitempty" gorm:"column:photo_content_type;type:varchar(100)"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ProductForm is the schema of the multipart form body accepted by the
// create and update endpoints. Pointer fields distinguish "absent" from a
// zero value so that presence of every required field can be validated
// before any business logic runs.
type ProductForm struct {
	Name        string   `form:"name" validate:"required,min=3,max=100"`
	Description string   `form:"description" validate:"required,max=2000"`
	Price       *float64 `form:"price" validate:"required,gte=0"`
	CategoryID  string   `form:"category" validate:"required"`
	Quantity    *int     `form:"quantity" validate:"required,gte=0"`
	Shipping    *bool    `form:"shipping" validate:"required"`
}

// Apply merges the submitted form fields into an existing product.
// The photo is handled separately because it is only replaced when a new
// file is part of the request.
func (f *ProductForm) Apply(p *Product) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = *f.Price
	p.CategoryID = f.CategoryID
	p.Quantity = *f.Quantity
	p.Shipping = *f.Shipping
}
