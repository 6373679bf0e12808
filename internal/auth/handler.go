package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Client   *Client
	Verifier Verifier
}

func NewHandler(client *Client, verifier Verifier) *Handler {
	return &Handler{Client: client, Verifier: verifier}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-up", h.signUp)
	rg.POST("/login", h.login)
	rg.GET("/session", h.session)
}

// The client sends a pre-hashed password; it is forwarded to the provider
// untouched.
type credentialsReq struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

func (r *credentialsReq) validate() string {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if !strings.Contains(r.Email, "@") || len(r.Email) > 255 {
		return "invalid email"
	}
	if r.PasswordHash == "" {
		return "password_hash required"
	}
	return ""
}

func (h *Handler) signUp(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid json"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msg})
		return
	}

	sess, err := h.Client.SignUp(c.Request.Context(), req.Email, req.PasswordHash)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "サインアップに失敗しました。"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "sign-up failed"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid json"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msg})
		return
	}

	sess, err := h.Client.SignIn(c.Request.Context(), req.Email, req.PasswordHash)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "メールアドレスまたはパスワードが不正です。"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "login failed"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

type sessionResp struct {
	Authenticated bool   `json:"is_authenticated"`
	UserID        string `json:"user_id,omitempty"`
}

// session reports whether the presented token is valid. A bad or missing
// token is a normal false answer, not an error status.
func (h *Handler) session(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusOK, sessionResp{Authenticated: false})
		return
	}

	userID, err := h.Verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, sessionResp{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, sessionResp{Authenticated: true, UserID: userID})
}
