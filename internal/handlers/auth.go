package handlers

import (
	"net/http"
	"strings"
	"time"

	"riskmatrix/internal/database"
	"riskmatrix/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func ShowRegister(c *gin.Context) {
	var orgs []models.Organization
	database.DB.Order("name asc").Find(&orgs)

	render(c, http.StatusOK, "register.html", gin.H{"error": "", "orgs": orgs})
}

type registerForm struct {
	Email          string `form:"email"`
	Password       string `form:"password"`
	Role           string `form:"role"`
	OrganizationID string `form:"organization_id"`
}

func Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		renderRegisterError(c, "Некорректные данные")
		return
	}

	form.Email = strings.TrimSpace(form.Email)
	if len(form.Email) < 3 || len(form.Password) < 6 {
		renderRegisterError(c, "Слишком короткий email или пароль")
		return
	}

	role := models.UserRole(form.Role)

	// через форму можно регистрировать только assessor / viewer
	switch role {
	case models.RoleAssessor, models.RoleViewer:
		// ок
	default:
		renderRegisterError(c, "Неверная роль")
		return
	}

	var org models.Organization
	if err := database.DB.First(&org, "id = ?", form.OrganizationID).Error; err != nil {
		renderRegisterError(c, "Организация не найдена")
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", form.Email).First(&existing).Error; err == nil {
		renderRegisterError(c, "Пользователь уже существует")
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	user := models.User{
		OrganizationID: org.ID,
		Email:          form.Email,
		PasswordHash:   string(hash),
		Role:           role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		renderRegisterError(c, "Ошибка сохранения пользователя")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func renderRegisterError(c *gin.Context, msg string) {
	var orgs []models.Organization
	database.DB.Order("name asc").Find(&orgs)

	render(c, http.StatusBadRequest, "register.html", gin.H{"error": msg, "orgs": orgs})
}

func ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"error": ""})
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Некорректные данные"})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", form.Email).First(&user).Error; err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Неверный email или пароль"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Неверный email или пароль"})
		return
	}

	now := time.Now().UTC()
	database.DB.Model(&user).Update("last_login", now)

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	sess.Set("org_id", user.OrganizationID)
	_ = sess.Save()

	c.Redirect(http.StatusFound, "/assets")
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/login")
}
