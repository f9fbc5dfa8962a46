package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NobreTrajes/os-control/internal/config"
	"github.com/NobreTrajes/os-control/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Login      string `json:"login" binding:"required,min=3"`
	Password   string `json:"password" binding:"required,min=6"`
	PersonType string `json:"person_type"`
	CPF        string `json:"cpf" binding:"omitempty,cpf"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	login := strings.ToLower(strings.TrimSpace(req.Login))

	var count int64
	h.db.Model(&models.User{}).Where("login = ?", login).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login_already_exists"})
		return
	}

	typeName := strings.ToUpper(strings.TrimSpace(req.PersonType))
	if typeName == "" {
		typeName = models.PersonTypeAttendant
	}

	pt := models.PersonType{Type: typeName}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoNothing: true,
	}).Create(&pt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_person_type"})
		return
	}
	if err := h.db.Where("type = ?", typeName).First(&pt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_person_type"})
		return
	}

	person := models.Person{
		Name:         strings.ToUpper(req.Name),
		PersonTypeID: pt.ID,
	}
	if req.CPF != "" {
		cpf := req.CPF
		person.CPF = &cpf
	}
	if err := h.db.Create(&person).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_person"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	user := models.User{
		Login:        login,
		PasswordHash: string(hashed),
		PersonID:     person.ID,
		Active:       true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_user"})
		return
	}

	token, err := h.generateToken(&user, &person, pt.Type)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"login":       user.Login,
			"name":        person.Name,
			"person_id":   person.ID,
			"person_type": pt.Type,
		},
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	login := strings.ToLower(strings.TrimSpace(req.Login))

	var user models.User
	if err := h.db.Preload("Person.PersonType").
		Where("login = ? AND active = true", login).
		First(&user).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := h.generateToken(&user, &user.Person, user.Person.PersonType.Type)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"login":       user.Login,
			"name":        user.Person.Name,
			"person_id":   user.PersonID,
			"person_type": user.Person.PersonType.Type,
		},
		"token": token,
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User, person *models.Person, personType string) (string, error) {
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"personId":   person.ID,
		"personType": personType,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
