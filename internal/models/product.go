package models

// Product represents an item held in stock.
type Product struct {
	ID            uint    `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name          string  `json:"nome" gorm:"column:nome;type:varchar(100);not null"`
	Description   string  `json:"descricao" gorm:"column:descricao;type:varchar(100);not null"`
	Price         float64 `json:"preco" gorm:"column:preco;not null"`
	StockQuantity int     `json:"quantidadeEstoque" gorm:"column:quantidadeestoque;not null"`
}

// TableName maps Product onto the produto table.
func (Product) TableName() string {
	return "produto"
}

// ProductInput is the request body for creating or fully replacing a product.
// Fields are pointers so a missing field can be told apart from a zero value.
type ProductInput struct {
	Name          *string  `json:"nome" validate:"required,min=3,max=100"`
	Description   *string  `json:"descricao" validate:"required,notblank,min=3,max=100"`
	Price         *float64 `json:"preco" validate:"required,gte=0"`
	StockQuantity *int     `json:"quantidadeEstoque" validate:"required,gt=0"`
}

// ToProduct builds a Product from a validated input.
func (in ProductInput) ToProduct() Product {
	var p Product
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	return p
}

// ProductPatch is the request body for a partial update. A nil field is left
// untouched; a present field must still satisfy its bound.
type ProductPatch struct {
	Name          *string  `json:"nome" validate:"omitempty,min=3,max=100"`
	Description   *string  `json:"descricao" validate:"omitempty,min=3,max=100"`
	Price         *float64 `json:"preco" validate:"omitempty,gte=0"`
	StockQuantity *int     `json:"quantidadeEstoque" validate:"omitempty,gt=0"`
}

// ApplyTo overwrites the fields of p that are present in the patch.
func (pt ProductPatch) ApplyTo(p *Product) {
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.StockQuantity != nil {
		p.StockQuantity = *pt.StockQuantity
	}
}
