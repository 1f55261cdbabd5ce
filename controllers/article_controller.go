package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ametel/pressbox/middleware"
	"github.com/ametel/pressbox/models"
	"github.com/ametel/pressbox/services"
	"github.com/ametel/pressbox/utils"
)

// ArticleController maps the /article HTTP surface onto the article service.
type ArticleController struct {
	svc    *services.ArticleService
	tokens *utils.DeleteTokenIssuer
}

func NewArticleController(svc *services.ArticleService, tokens *utils.DeleteTokenIssuer) *ArticleController {
	return &ArticleController{svc: svc, tokens: tokens}
}

// Index serves the public listing: paginated published articles, or the full
// search result set when a non-blank q parameter is present. Search bypasses
// both pagination and the list cache.
func (a *ArticleController) Index(ctx *gin.Context) {
	term := strings.TrimSpace(ctx.Query("q"))
	page := parsePage(ctx.Query("page"))

	if term != "" {
		items, err := a.svc.Search(ctx.Request.Context(), term)
		if err != nil {
			renderServiceError(ctx, err)
			return
		}
		utils.Success(ctx, gin.H{
			"items":       items,
			"search_term": term,
			"total":       len(items),
		})
		return
	}

	cacheKey := utils.ArticleListCacheKey(page, a.svc.PageSize())
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	result, err := a.svc.ListPublished(ctx.Request.Context(), page)
	if err != nil {
		renderServiceError(ctx, err)
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: result}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, result)
}

// Admin serves every article, published and drafts alike, with the delete
// confirmation tokens for the current session.
func (a *ArticleController) Admin(ctx *gin.Context) {
	items, err := a.svc.ListAll(ctx.Request.Context())
	if err != nil {
		renderServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items":         items,
		"delete_tokens": a.deleteTokens(ctx, items),
	})
}

// History serves the unpublished articles.
func (a *ArticleController) History(ctx *gin.Context) {
	items, err := a.svc.ListUnpublished(ctx.Request.Context())
	if err != nil {
		renderServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// NewForm serves a blank submission scaffold for the create form.
func (a *ArticleController) NewForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"article": models.ArticleInput{}})
}

// Create validates and persists a submission, then redirects to the listing.
func (a *ArticleController) Create(ctx *gin.Context) {
	var input models.ArticleInput
	if err := ctx.ShouldBind(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	if _, err := a.svc.Create(ctx.Request.Context(), input); err != nil {
		renderServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(utils.ArticleListCachePrefix)
	utils.SeeOther(ctx, "/article/")
}

// Show serves one article and increments its view counter.
func (a *ArticleController) Show(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	article, err := a.svc.GetForDisplay(ctx.Request.Context(), id)
	if err != nil {
		renderServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"article":      article,
		"delete_token": a.tokens.DeleteToken(middleware.SessionID(ctx), article.ID),
	})
}

// EditForm serves the current field values for the edit form.
func (a *ArticleController) EditForm(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	article, err := a.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		renderServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"article": article})
}

// Edit applies a validated submission to an existing article.
func (a *ArticleController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var input models.ArticleInput
	if err := ctx.ShouldBind(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	if _, err := a.svc.Update(ctx.Request.Context(), id, input); err != nil {
		renderServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(utils.ArticleListCachePrefix)
	utils.SeeOther(ctx, "/article/")
}

// Toggle flips the publish flag and redirects to the listing.
func (a *ArticleController) Toggle(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if _, err := a.svc.TogglePublished(ctx.Request.Context(), id); err != nil {
		renderServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(utils.ArticleListCachePrefix)
	utils.SeeOther(ctx, "/article/")
}

// Delete removes an article permanently once the confirmation token checks
// out. An invalid token is answered with 403 and nothing is deleted.
func (a *ArticleController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	token := ctx.PostForm("_token")
	if token == "" {
		var body struct {
			Token string `json:"_token"`
		}
		if err := ctx.ShouldBindJSON(&body); err == nil {
			token = body.Token
		}
	}

	if err := a.svc.Delete(ctx.Request.Context(), id, middleware.SessionID(ctx), token); err != nil {
		renderServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(utils.ArticleListCachePrefix)
	utils.SeeOther(ctx, "/article/")
}

func (a *ArticleController) deleteTokens(ctx *gin.Context, items []models.Article) map[string]string {
	sessionID := middleware.SessionID(ctx)
	tokens := make(map[string]string, len(items))
	for _, item := range items {
		tokens[strconv.FormatUint(uint64(item.ID), 10)] = a.tokens.DeleteToken(sessionID, item.ID)
	}
	return tokens
}

func parsePage(raw string) int {
	if p, err := strconv.Atoi(raw); err == nil && p > 0 {
		return p
	}
	return 1
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "article not found")
		return 0, false
	}
	return uint(id), true
}

func renderServiceError(ctx *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.FormErrors(ctx, 40020, ve.Fields)
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "article not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "invalid confirmation token")
	case errors.Is(err, services.ErrUnavailable):
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "article store unavailable")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50001, "internal error")
	}
}
