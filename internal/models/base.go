package models

import "time"

// Audit carrega as colunas de auditoria comuns a todas as tabelas.
// Cancelamento é lógico: registros cancelados ficam na base com
// date_canceled preenchido.
type Audit struct {
	CreatedByID  *uint      `json:"created_by_id"`
	DateCreated  time.Time  `gorm:"autoCreateTime" json:"date_created"`
	UpdatedByID  *uint      `json:"updated_by_id"`
	DateUpdated  *time.Time `json:"date_updated"`
	CanceledByID *uint      `json:"canceled_by_id"`
	DateCanceled *time.Time `json:"date_canceled"`
}

func (a *Audit) Touch(userID uint, now time.Time) {
	a.UpdatedByID = &userID
	a.DateUpdated = &now
}

func (a *Audit) Cancel(userID uint, now time.Time) {
	a.CanceledByID = &userID
	a.DateCanceled = &now
}

func (a *Audit) IsCanceled() bool {
	return a.DateCanceled != nil
}
