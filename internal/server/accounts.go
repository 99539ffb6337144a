package server

import (
	"errors"
	"net/http"

	"github.com/TLChilton/Milestone-2/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *httpHandler) handleCreateAccount(c *gin.Context) {
	input := users.RegisterInput{
		FirstName: c.PostForm("firstName"),
		LastName:  c.PostForm("lastName"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
	}

	user, err := h.users.Register(c.Request.Context(), input)
	if errors.Is(err, users.ErrEmailTaken) {
		c.HTML(http.StatusConflict, "createAccount.html", gin.H{
			"User":  nil,
			"Error": "An account with that email already exists.",
		})
		return
	}
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.HTML(http.StatusBadRequest, "createAccount.html", gin.H{
			"User":  nil,
			"Error": "Email and password are required.",
		})
		return
	}
	if err != nil {
		h.logger.Error("registration failed", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "The account could not be created.")
		return
	}

	h.startSession(c, user.ID)
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	user, err := h.users.Authenticate(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if errors.Is(err, users.ErrInvalidCredentials) {
		// The original fell through with no response here. Surface the
		// failure instead.
		c.HTML(http.StatusUnauthorized, "index.html", gin.H{
			"User":  nil,
			"Error": "Invalid email or password.",
		})
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}

	h.startSession(c, user.ID)
}

func (h *httpHandler) handleLogout(c *gin.Context) {
	token, err := c.Cookie(h.cookieName)
	if err == nil && token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			h.logger.Error("token revocation failed", zap.Error(err))
			h.renderError(c, http.StatusInternalServerError, "Logout failed.")
			return
		}
	}

	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// startSession mints a token for the user, sets the session cookie, and
// redirects home.
func (h *httpHandler) startSession(c *gin.Context, userID int64) {
	token, err := h.sessions.Mint(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("token mint failed", zap.Int64("user_id", userID), zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "The session could not be started.")
		return
	}

	c.SetCookie(h.cookieName, token, 0, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
