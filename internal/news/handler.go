package news

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Pipeline *Pipeline
	Repo     *Repo
}

func NewHandler(pipeline *Pipeline, repo *Repo) *Handler {
	return &Handler{Pipeline: pipeline, Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/get-news-by-location", h.getNewsByLocation)
	rg.GET("/prefecture/:name", h.listByPrefecture)
}

// Pointers so a missing field is distinguishable from a legitimate 0.0.
type locationReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *Handler) getNewsByLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid json"})
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "latitude and longitude required"})
		return
	}
	lat, lon := *req.Latitude, *req.Longitude
	if !isFinite(lat) || !isFinite(lon) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "latitude and longitude must be finite"})
		return
	}

	articles, err := h.Pipeline.GetNewsByLocation(c.Request.Context(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, ErrLocationNotResolved):
			c.JSON(http.StatusNotFound, gin.H{"detail": "座標から都道府県が見つかりません。"})
		case errors.Is(err, ErrUpstreamFetch):
			c.JSON(http.StatusBadGateway, gin.H{"detail": "ニュースの取得に失敗しました。"})
		case errors.Is(err, ErrNoArticles):
			c.JSON(http.StatusNotFound, gin.H{"detail": "ニュースが見つかりません。"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, articles)
}

// listByPrefecture is the read-only path the map UI polls between ingests.
func (h *Handler) listByPrefecture(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "prefecture required"})
		return
	}

	articles, err := h.Repo.ListByPrefecture(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "list failed"})
		return
	}
	c.JSON(http.StatusOK, articles)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
