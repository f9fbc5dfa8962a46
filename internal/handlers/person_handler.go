package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NobreTrajes/os-control/internal/models"
	"github.com/NobreTrajes/os-control/internal/validators"
)

type PersonHandler struct {
	db *gorm.DB
}

func NewPersonHandler(db *gorm.DB) *PersonHandler {
	return &PersonHandler{db: db}
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *PersonHandler) ListClients(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.
		Preload("Contacts").
		Joins("JOIN person_type pt ON pt.id = person.person_type_id").
		Where("pt.type = ?", models.PersonTypeClient)

	if query != "" {
		like := "%" + query + "%"
		cpf := validators.NormalizeCPF(query)
		if cpf != "" && validators.IsCPFValid(cpf) {
			q = q.Where("person.cpf = ?", cpf)
		} else {
			q = q.Where("LOWER(person.name) LIKE ?", like)
		}
	}

	var clients []models.Person
	if err := q.
		Order("person.date_created DESC").
		Find(&clients).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed_to_list_clients",
		})
		return
	}

	c.JSON(http.StatusOK, clients)
}

// ======================================================
// LIST ATTENDANTS
// ======================================================
func (h *PersonHandler) ListAttendants(c *gin.Context) {
	var attendants []models.Person
	if err := h.db.
		Joins("JOIN person_type pt ON pt.id = person.person_type_id").
		Where("pt.type IN ?", []string{models.PersonTypeAttendant, models.PersonTypeAdmin}).
		Order("person.name ASC").
		Find(&attendants).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed_to_list_attendants",
		})
		return
	}

	c.JSON(http.StatusOK, attendants)
}
