package empathy

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"geonews/internal/auth"
	"geonews/internal/news"
)

type Handler struct {
	Repo     *Repo
	Articles *news.Repo
}

func NewHandler(repo *Repo, articles *news.Repo) *Handler {
	return &Handler{Repo: repo, Articles: articles}
}

// RegisterRoutes expects rg to already carry the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:article_id/empathy", h.toggle)
	rg.GET("/:article_id/empathy", h.get)
}

func (h *Handler) toggle(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized"})
		return
	}

	articleID := strings.TrimSpace(c.Param("article_id"))
	if articleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "article_id required"})
		return
	}

	a, err := h.Articles.GetByID(c.Request.Context(), articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "lookup failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "article not found"})
		return
	}

	on, err := h.Repo.Toggle(c.Request.Context(), userID, articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "toggle failed"})
		return
	}

	count, err := h.Repo.Count(c.Request.Context(), articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "count failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id": articleID,
		"empathized": on,
		"count":      count,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized"})
		return
	}

	articleID := strings.TrimSpace(c.Param("article_id"))
	if articleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "article_id required"})
		return
	}

	on, err := h.Repo.Has(c.Request.Context(), userID, articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "lookup failed"})
		return
	}
	count, err := h.Repo.Count(c.Request.Context(), articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "count failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id": articleID,
		"empathized": on,
		"count":      count,
	})
}
