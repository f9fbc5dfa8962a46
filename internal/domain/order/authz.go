package order

import (
	"github.com/NobreTrajes/os-control/internal/httperr"
	"github.com/NobreTrajes/os-control/internal/models"
)

// Actor identifica quem está executando a operação: o usuário logado
// e a pessoa (funcionário) vinculada a ele.
type Actor struct {
	UserID     uint
	PersonID   uint
	PersonType string
}

func (a Actor) IsAdmin() bool {
	return a.PersonType == models.PersonTypeAdmin
}

// CanManage libera transições de fase para o administrador, o
// atendente responsável ou o recepcionista vinculado à OS.
func CanManage(a Actor, o *models.ServiceOrder) error {
	if a.IsAdmin() {
		return nil
	}
	if o.EmployeeID != nil && *o.EmployeeID == a.PersonID {
		return nil
	}
	if o.AttendantID != nil && *o.AttendantID == a.PersonID {
		return nil
	}
	return httperr.ErrBusiness("forbidden")
}

// CanRefuse relaxa a regra de CanManage: uma OS ainda sem atendente
// responsável (pré-triagem) pode ser recusada por qualquer usuário
// autenticado.
func CanRefuse(a Actor, o *models.ServiceOrder) error {
	if a.IsAdmin() {
		return nil
	}
	if o.EmployeeID != nil && *o.EmployeeID == a.PersonID {
		return nil
	}
	if o.EmployeeID == nil {
		return nil
	}
	return httperr.ErrBusiness("forbidden")
}
