package models

// Papéis de pessoa. Usados tanto para autorização quanto para
// classificar o cliente de uma ordem de serviço.
const (
	PersonTypeAdmin     = "ADMINISTRADOR"
	PersonTypeClient    = "CLIENTE"
	PersonTypeAttendant = "ATENDENTE"
	PersonTypeReception = "RECEPCAO"
)

type PersonType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"size:50;uniqueIndex;not null" json:"type"`

	Audit
}

func (PersonType) TableName() string { return "person_type" }

type City struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:20" json:"code"`
	Name string `gorm:"size:255;index" json:"name"`
	UF   string `gorm:"size:2" json:"uf"`

	Audit
}

func (City) TableName() string { return "city" }

type Person struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name string  `gorm:"size:255;not null" json:"name"`
	CPF  *string `gorm:"size:20;uniqueIndex" json:"cpf"`

	PersonTypeID uint       `json:"person_type_id"`
	PersonType   PersonType `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"person_type"`

	IsInfant bool `gorm:"default:false" json:"is_infant"`

	Contacts  []PersonContact `gorm:"foreignKey:PersonID" json:"contacts,omitempty"`
	Addresses []PersonAddress `gorm:"foreignKey:PersonID" json:"addresses,omitempty"`

	Audit
}

func (Person) TableName() string { return "person" }

type PersonContact struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	PersonID uint    `gorm:"index" json:"person_id"`
	Phone    *string `gorm:"size:30" json:"phone"`
	Email    *string `gorm:"size:255" json:"email"`

	Audit
}

func (PersonContact) TableName() string { return "persons_contacts" }

type PersonAddress struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PersonID uint `gorm:"index" json:"person_id"`

	Street       *string `gorm:"size:255" json:"street"`
	Number       *string `gorm:"size:30" json:"number"`
	CEP          *string `gorm:"size:20" json:"cep"`
	Neighborhood *string `gorm:"size:255" json:"neighborhood"`
	Complemento  *string `gorm:"size:255" json:"complemento"`

	CityID *uint `json:"city_id"`
	City   *City `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"city,omitempty"`

	Audit
}

func (PersonAddress) TableName() string { return "persons_adresses" }
