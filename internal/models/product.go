package models

import "github.com/shopspring/decimal"

// Product é o produto de estoque (catálogo próprio da loja).
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Type        string          `gorm:"size:50;not null" json:"tipo"`
	Name        string          `gorm:"size:255;not null" json:"nome_produto"`
	Size        *string         `gorm:"size:20" json:"tamanho"`
	Color       *string         `gorm:"size:50" json:"cor"`
	Brand       *string         `gorm:"size:100" json:"marca"`
	RentalPrice decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"rental_price"`
	Active      bool            `gorm:"default:true" json:"active"`

	Audit
}

func (Product) TableName() string { return "products" }

// TemporaryProduct descreve uma peça medida no balcão (paletó, calça,
// camisa, colete ou acessório) que ainda não existe no estoque.
type TemporaryProduct struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProductType  string  `gorm:"size:50;not null" json:"product_type"`
	Size         *string `gorm:"size:20" json:"size"`
	SleeveLength *string `gorm:"size:20" json:"sleeve_length"`
	WaistSize    *string `gorm:"size:20" json:"waist_size"`
	LegLength    *string `gorm:"size:20" json:"leg_length"`
	Color        *string `gorm:"size:50" json:"color"`
	Brand        *string `gorm:"size:100" json:"brand"`
	Description  *string `gorm:"size:255" json:"description"`

	AjusteCintura     *string `gorm:"size:50" json:"ajuste_cintura"`
	AjusteComprimento *string `gorm:"size:50" json:"ajuste_comprimento"`

	Extensor bool `gorm:"default:false" json:"extensor"`
	Venda    bool `gorm:"default:false" json:"venda"`

	Audit
}

func (TemporaryProduct) TableName() string { return "temporary_products" }
