package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/game"
	"github.com/magefree/hearth-server-go/internal/match"
	"github.com/magefree/hearth-server-go/internal/protocol"
	"github.com/magefree/hearth-server-go/internal/repository"
	"go.uber.org/zap"
)

const (
	routeAPIPrefix = "/api"
	routeHealth    = "/healthz"
	routeCards     = "/cards"
	routeHeroes    = "/heroes"
	routeMatches   = "/matches"
	routeMatchByID = "/matches/:id"
	routeResults   = "/results"

	jsonKeyError = "error"

	defaultResultLimit = 20
	maxResultLimit     = 100
)

// Handler serves the read-only HTTP API.
type Handler struct {
	manager *match.Manager
	cards   *catalogue.Catalogue
	results repository.ResultStore
	logger  *zap.Logger
}

// NewHandler creates the HTTP handler set. results may be nil.
func NewHandler(mgr *match.Manager, cards *catalogue.Catalogue, results repository.ResultStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{manager: mgr, cards: cards, results: results, logger: logger}
}

// NewRouter builds the gin engine: the JSON API plus the websocket endpoint
// at wsPath.
func NewRouter(h *Handler, hub *Hub, wsPath string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	router.GET(routeHealth, h.Health)
	if hub != nil {
		router.GET(wsPath, func(c *gin.Context) { hub.ServeWS(c.Writer, c.Request) })
	}

	api := router.Group(routeAPIPrefix)
	{
		api.GET(routeCards, h.ListCards)
		api.GET(routeHeroes, h.ListHeroes)
		api.GET(routeMatches, h.ListMatches)
		api.GET(routeMatchByID, h.GetMatch)
		api.GET(routeResults, h.ListResults)
	}
	return router
}

// RequestLogger logs each request through zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCards returns the catalogue, optionally filtered by ?kind=.
func (h *Handler) ListCards(c *gin.Context) {
	kind := game.CardKind(c.Query("kind"))
	switch kind {
	case "", game.KindMinion, game.KindSpell, game.KindWeapon:
	default:
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "unknown card kind"})
		return
	}
	var defs []*game.CardDefinition
	for _, def := range h.cards.Cards() {
		if kind == "" || def.Kind() == kind {
			defs = append(defs, def)
		}
	}
	out := make([]protocol.CardView, 0, len(defs))
	for _, def := range defs {
		out = append(out, protocol.CardOf(def))
	}
	c.JSON(http.StatusOK, out)
}

// ListHeroes returns every hero class with its hero power.
func (h *Handler) ListHeroes(c *gin.Context) {
	type heroView struct {
		Class     string                 `json:"class"`
		HeroPower protocol.HeroPowerView `json:"heroPower"`
	}
	classes := h.cards.Classes()
	out := make([]heroView, 0, len(classes))
	for _, class := range classes {
		hp, err := h.cards.HeroPower(class)
		if err != nil {
			h.logger.Error("failed to build hero power", zap.String("class", class), zap.Error(err))
			continue
		}
		out = append(out, heroView{Class: class, HeroPower: protocol.HeroPowerView{
			Name:        hp.Name,
			Description: hp.Description,
			Cost:        hp.Cost,
			TargetClass: string(hp.TargetClass),
		}})
	}
	c.JSON(http.StatusOK, out)
}

// ListMatches summarises every match, newest first.
func (h *Handler) ListMatches(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.List())
}

// GetMatch returns a match summary, or a seated player's view when their
// session token is given with ?token=.
func (h *Handler) GetMatch(c *gin.Context) {
	id := c.Param("id")
	if token := c.Query("token"); token != "" {
		state, err := h.manager.Snapshot(id, token)
		if err != nil {
			c.JSON(httpStatusOf(err), gin.H{jsonKeyError: err.Error()})
			return
		}
		c.JSON(http.StatusOK, state)
		return
	}
	m, err := h.manager.Get(id)
	if err != nil {
		c.JSON(httpStatusOf(err), gin.H{jsonKeyError: err.Error()})
		return
	}
	c.JSON(http.StatusOK, m.Summary())
}

// ListResults returns recently finished matches, newest first. ?limit=N caps
// the count.
func (h *Handler) ListResults(c *gin.Context) {
	if h.results == nil {
		c.JSON(http.StatusOK, []repository.Result{})
		return
	}
	limit := defaultResultLimit
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= maxResultLimit {
			limit = n
		}
	}
	results, err := h.results.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "failed to fetch results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func httpStatusOf(err error) int {
	switch {
	case errors.Is(err, match.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, match.ErrNotSeated):
		return http.StatusForbidden
	case errors.Is(err, match.ErrMatchNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
