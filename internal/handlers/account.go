package handlers

import (
	"net/http"

	"github.com/atharvakonge/finance/internal/models"
	"github.com/atharvakonge/finance/internal/render"
	"github.com/gin-gonic/gin"
)

// register handles POST /api/register
func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		s.badRequest(c, err.Error())
		return
	}

	u, err := s.Credentials.Register(c.Request.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		s.fail(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"cash":     u.Cash,
		"cash_usd": render.USD(u.Cash),
	})
}

// login handles POST /api/login. Any previous session is forgotten first.
func (s *Server) login(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.Sessions.Destroy(token)
	}

	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusForbidden, apiError{Code: "invalid_credentials", Message: err.Error()})
		return
	}

	u, err := s.Credentials.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, "login", err)
		return
	}

	token := s.Sessions.Create(u.ID)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username})
}

// logout handles POST /api/logout
func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.Sessions.Destroy(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
