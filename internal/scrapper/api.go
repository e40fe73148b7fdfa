// Package scrapper implements the scrapper REST API: chat registration,
// tracked link management, tags, and per-chat notification time.
package scrapper

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/cache"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/source"
	"github.com/linktrack/linktrack/internal/storage"
)

// ChatIDHeader carries the Telegram chat id on link and tag operations.
const ChatIDHeader = "Tg-Chat-Id"

// API exposes the scrapper HTTP handlers.
type API struct {
	repo     storage.LinkRepo
	cache    *cache.LinkCache
	sources  *source.Registry
	pageSize int
	log      *logger.Logger
}

// New creates the scrapper API. The cache may be nil when caching is
// disabled.
func New(repo storage.LinkRepo, linkCache *cache.LinkCache, sources *source.Registry, pageSize int, log *logger.Logger) *API {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &API{
		repo:     repo,
		cache:    linkCache,
		sources:  sources,
		pageSize: pageSize,
		log:      log.WithComponent("scrapper.api"),
	}
}

// Register mounts the scrapper routes on the engine.
func (a *API) Register(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	v1.POST("/tg-chat/:id", a.registerChat)
	v1.DELETE("/tg-chat/:id", a.deleteChat)
	v1.GET("/links", a.listLinks)
	v1.POST("/links", a.addLink)
	v1.DELETE("/links", a.removeLink)
	v1.POST("/tags", a.addTag)
	v1.DELETE("/tags", a.removeTag)
	v1.PUT("/time", a.updateTime)
}

func (a *API) registerChat(c *gin.Context) {
	tgID, ok := pathChatID(c)
	if !ok {
		return
	}
	a.log.Info("registering chat", map[string]interface{}{"chat_id": tgID})
	if err := a.repo.RegisterChat(c.Request.Context(), tgID); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) deleteChat(c *gin.Context) {
	tgID, ok := pathChatID(c)
	if !ok {
		return
	}
	a.cache.Invalidate(c.Request.Context(), tgID)
	a.log.Info("deleting chat", map[string]interface{}{"chat_id": tgID})
	if err := a.repo.DeleteChat(c.Request.Context(), tgID); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) listLinks(c *gin.Context) {
	tgID, ok := headerChatID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if cached := a.cache.Get(ctx, tgID); cached != nil {
		c.JSON(http.StatusOK, model.ListLinksResponse{Links: cached, Size: len(cached)})
		return
	}

	// Drain all pages so clients and the cache always see the full list.
	all := []model.LinkResponse{}
	for page := 1; ; page++ {
		links, err := a.repo.ListLinks(ctx, tgID, page, a.pageSize)
		if err != nil {
			a.respondError(c, err)
			return
		}
		if len(links) == 0 {
			break
		}
		all = append(all, links...)
	}

	a.cache.Set(ctx, tgID, all)
	c.JSON(http.StatusOK, model.ListLinksResponse{Links: all, Size: len(all)})
}

func (a *API) addLink(c *gin.Context) {
	tgID, ok := headerChatID(c)
	if !ok {
		return
	}
	var req model.AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.URLNotSupported(req.Link).WithCause(err))
		return
	}
	ctx := c.Request.Context()
	a.log.Info("adding link", map[string]interface{}{"chat_id": tgID, "link": req.Link})

	a.cache.Invalidate(ctx, tgID)

	src, err := a.sources.For(req.Link)
	if err != nil {
		a.respondError(c, err)
		return
	}
	info, err := src.Fetch(ctx, req.Link, req.Filters)
	if err != nil {
		a.respondError(c, err)
		return
	}

	if err := a.repo.AddLink(ctx, tgID, req.Link, info.Date(), req.Tags, req.Filters); err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LinkResponse{
		ID:      tgID,
		URL:     req.Link,
		Tags:    req.Tags,
		Filters: req.Filters,
	})
}

func (a *API) removeLink(c *gin.Context) {
	tgID, ok := headerChatID(c)
	if !ok {
		return
	}
	var req model.RemoveLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.URLNotSupported(req.Link).WithCause(err))
		return
	}
	ctx := c.Request.Context()

	a.cache.Invalidate(ctx, tgID)
	a.log.Info("removing link", map[string]interface{}{"chat_id": tgID, "link": req.Link})

	removed, err := a.repo.RemoveLink(ctx, tgID, req.Link)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

func (a *API) addTag(c *gin.Context) {
	tgID, ok := headerChatID(c)
	if !ok {
		return
	}
	var req model.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.LinkNotFound(tgID, req.URL).WithCause(err))
		return
	}
	ctx := c.Request.Context()

	a.cache.Invalidate(ctx, tgID)
	if err := a.repo.AddTag(ctx, tgID, req.URL, req.Tag); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) removeTag(c *gin.Context) {
	tgID, ok := headerChatID(c)
	if !ok {
		return
	}
	var req model.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.LinkNotFound(tgID, req.URL).WithCause(err))
		return
	}
	ctx := c.Request.Context()

	a.cache.Invalidate(ctx, tgID)
	if err := a.repo.RemoveTag(ctx, tgID, req.URL, req.Tag); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) updateTime(c *gin.Context) {
	tgID, ok := headerChatID(c)
	if !ok {
		return
	}
	var req model.UpdateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.BadTimeFormat(req.Time).WithCause(err))
		return
	}
	a.log.Info("updating notify time", map[string]interface{}{"chat_id": tgID, "time": req.Time})

	if err := a.repo.SetNotifyTime(c.Request.Context(), tgID, &req.Time); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// respondError writes the error envelope with the status the error maps to.
func (a *API) respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		a.log.WithError(err).Error("request failed", map[string]interface{}{"path": c.Request.URL.Path})
	} else {
		a.log.Warn("request rejected", map[string]interface{}{
			"path": c.Request.URL.Path,
			"code": string(appErr.Code),
		})
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

func pathChatID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		appErr := apperrors.BadChatID(raw).WithCause(err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return 0, false
	}
	return id, true
}

func headerChatID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(ChatIDHeader)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		appErr := apperrors.BadChatID(raw).WithCause(err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return 0, false
	}
	return id, true
}
