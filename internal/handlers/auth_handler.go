package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/models"
	"leadcrm/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	cookie      SessionCookie
}

func NewAuthHandler(userService services.UserService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{userService: userService, cookie: cookie}
}

// @Summary      Sign up
// @Description  Creates an account, sets the session cookie and returns the token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Account data"
// @Success      201     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]interface{}
// @Failure      500     {object}  map[string]interface{}
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "[auth][signup]", errInvalidBody)
		return
	}

	sess, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][signup]", err)
		return
	}

	h.cookie.Set(c, sess.Token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"token":   sess.Token,
	})
}

// @Summary      Log in
// @Description  Checks credentials and sets the session cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  models.UserSummary
// @Failure      400    {object}  map[string]interface{}
// @Failure      500    {object}  map[string]interface{}
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "[auth][login]", errInvalidBody)
		return
	}

	sess, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][login]", err)
		return
	}

	h.cookie.Set(c, sess.Token)
	c.JSON(http.StatusOK, sess.User.Summary())
}

// @Summary      Log out
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// @Summary      Current user
// @Description  Returns the user bound to the session cookie
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/auth/check [get]
func (h *AuthHandler) Check(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, "[auth][check]", errMissingSessionUser)
		return
	}
	c.JSON(http.StatusOK, user)
}
