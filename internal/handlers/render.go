package handlers

import (
	"riskmatrix/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// render — обёртка над c.HTML, которая во все шаблоны прокидывает CurrentUser.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	// Пытаемся достать пользователя, которого положил middleware.InjectUser
	if uVal, ok := c.Get("CurrentUser"); ok {
		switch u := uVal.(type) {
		case models.User:
			data["CurrentUser"] = u
			data["CurrentUserEmail"] = u.Email
			data["CurrentUserRole"] = u.Role
		case *models.User:
			data["CurrentUser"] = u
			data["CurrentUserEmail"] = u.Email
			data["CurrentUserRole"] = u.Role
		}
	}

	// обычный рендер
	c.HTML(status, tmpl, data)
}

// sessionOrgID — организация текущего пользователя; все выборки
// скоупятся ею, межтенантные ссылки запрещены.
func sessionOrgID(c *gin.Context) string {
	sess := sessions.Default(c)
	orgID, _ := sess.Get("org_id").(string)
	return orgID
}

func sessionUserID(c *gin.Context) string {
	sess := sessions.Default(c)
	uid, _ := sess.Get("user_id").(string)
	return uid
}

func sessionRole(c *gin.Context) models.UserRole {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	return models.UserRole(roleStr)
}
