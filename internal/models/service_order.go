package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ServiceOrderPhase struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:20;uniqueIndex;not null" json:"name"`

	Audit
}

func (ServiceOrderPhase) TableName() string { return "service_order_phases" }

type RefusalReason struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	Audit
}

func (RefusalReason) TableName() string { return "refusal_reasons" }

// PaymentDetail é uma entrada do extrato de pagamentos da OS,
// armazenado como jsonb. Tipo é "sinal" ou "restante".
type PaymentDetail struct {
	Amount         decimal.Decimal `json:"amount"`
	FormaPagamento string          `json:"forma_pagamento"`
	Tipo           string          `json:"tipo"`
	Data           string          `json:"data,omitempty"`
}

const (
	PaymentTipoSinal    = "sinal"
	PaymentTipoRestante = "restante"
)

type ServiceOrder struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RenterID *uint   `json:"renter_id"`
	Renter   *Person `gorm:"foreignKey:RenterID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"renter,omitempty"`

	EmployeeID *uint   `json:"employee_id"`
	Employee   *Person `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"employee,omitempty"`

	AttendantID *uint   `json:"attendant_id"`
	Attendant   *Person `gorm:"foreignKey:AttendantID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"attendant,omitempty"`

	OrderDate time.Time `gorm:"type:date;not null" json:"order_date"`

	EventID *uint  `json:"event_id"`
	Event   *Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"event,omitempty"`

	RenterRole *string `gorm:"size:255" json:"renter_role"`

	TotalValue       decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"total_value"`
	AdvancePayment   decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"advance_payment"`
	RemainingPayment decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"remaining_payment"`
	MaxPaymentDate   *time.Time      `gorm:"type:date" json:"max_payment_date"`

	PaymentMethod  *string                            `gorm:"size:255" json:"payment_method"`
	PaymentDetails datatypes.JSONSlice[PaymentDetail] `gorm:"type:jsonb" json:"payment_details"`

	AdjustmentNeeded *bool   `json:"adjustment_needed"`
	CameFrom         *string `gorm:"size:255" json:"came_from"`
	Purchase         bool    `gorm:"default:false" json:"purchase"`
	ServiceType      *string `gorm:"size:50" json:"service_type"`
	Observations     *string `gorm:"type:text" json:"observations"`

	ServiceOrderPhaseID *uint              `json:"service_order_phase_id"`
	ServiceOrderPhase   *ServiceOrderPhase `gorm:"foreignKey:ServiceOrderPhaseID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service_order_phase,omitempty"`

	JustificationRefusal  *string        `gorm:"type:text" json:"justification_refusal"`
	JustificationReasonID *uint          `json:"justification_reason_id"`
	JustificationReason   *RefusalReason `gorm:"foreignKey:JustificationReasonID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"justification_reason,omitempty"`

	ProvaDate     *time.Time `gorm:"type:date" json:"prova_date"`
	RetiradaDate  *time.Time `gorm:"type:date" json:"retirada_date"`
	DevolucaoDate *time.Time `gorm:"type:date" json:"devolucao_date"`

	DataRetirado   *time.Time `json:"data_retirado"`
	DataDevolvido  *time.Time `json:"data_devolvido"`
	DataRecusa     *time.Time `gorm:"type:date" json:"data_recusa"`
	DataFinalizado *time.Time `gorm:"type:date" json:"data_finalizado"`
	ProductionDate *time.Time `gorm:"type:date" json:"production_date"`

	EstaAtrasada bool `gorm:"default:false" json:"esta_atrasada"`

	IsVirtual  bool    `gorm:"default:false" json:"is_virtual"`
	ClientName *string `gorm:"size:255" json:"client_name"`

	Items []ServiceOrderItem `gorm:"foreignKey:ServiceOrderID" json:"items,omitempty"`

	Audit
}

func (ServiceOrder) TableName() string { return "service_orders" }

func (o *ServiceOrder) PhaseName() string {
	if o.ServiceOrderPhase == nil {
		return ""
	}
	return o.ServiceOrderPhase.Name
}

type ServiceOrderItem struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ServiceOrderID uint `gorm:"index;not null" json:"service_order_id"`

	ProductID *uint    `json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"product,omitempty"`

	TemporaryProductID *uint             `json:"temporary_product_id"`
	TemporaryProduct   *TemporaryProduct `gorm:"foreignKey:TemporaryProductID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"temporary_product,omitempty"`

	AdjustmentNeeded bool    `gorm:"default:false" json:"adjustment_needed"`
	AdjustmentValue  *int    `json:"adjustment_value"`
	AdjustmentNotes  *string `gorm:"size:255" json:"adjustment_notes"`

	Audit
}

func (ServiceOrderItem) TableName() string { return "service_order_items" }
