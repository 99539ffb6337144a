package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/TLChilton/Milestone-2/internal/catalog"
	"github.com/TLChilton/Milestone-2/internal/downloads"
	"github.com/TLChilton/Milestone-2/internal/session"
	"github.com/TLChilton/Milestone-2/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityContextKey = "library_identity"

var (
	errMissingSessions  = errors.New("session service dependency required")
	errMissingUsers     = errors.New("users service dependency required")
	errMissingCatalog   = errors.New("catalog service dependency required")
	errMissingDownloads = errors.New("download ledger dependency required")
	errMissingCookie    = errors.New("session cookie name required")
)

// Dependencies wires the request handlers to the domain services.
type Dependencies struct {
	Sessions   *session.Service
	Users      *users.Service
	Catalog    *catalog.Service
	Downloads  *downloads.Ledger
	Logger     *zap.Logger
	CookieName string
	PDFDir     string
	StaticDir  string
}

// NewHTTPHandler builds the full route table over the provided services.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Sessions == nil {
		return nil, errMissingSessions
	}
	if deps.Users == nil {
		return nil, errMissingUsers
	}
	if deps.Catalog == nil {
		return nil, errMissingCatalog
	}
	if deps.Downloads == nil {
		return nil, errMissingDownloads
	}
	if deps.CookieName == "" {
		return nil, errMissingCookie
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	router.SetHTMLTemplate(templates)

	handler := &httpHandler{
		sessions:   deps.Sessions,
		users:      deps.Users,
		catalog:    deps.Catalog,
		downloads:  deps.Downloads,
		logger:     logger,
		cookieName: deps.CookieName,
		pdfDir:     deps.PDFDir,
	}

	router.Use(handler.resolveIdentity)

	router.GET("/", handler.renderPage("index.html"))
	router.GET("/index", handler.renderPage("index.html"))
	router.GET("/about", handler.renderPage("about.html"))
	router.GET("/howToUse", handler.renderPage("howToUse.html"))
	router.GET("/createAccount", handler.renderPage("createAccount.html"))

	router.GET("/myLibrary", handler.handleLibrary)
	router.POST("/myLibrary", handler.handleLibrary)
	router.POST("/myLibraryRating", handler.handleLibraryRating)
	router.POST("/search", handler.handleSearch)
	router.POST("/searchRating", handler.handleSearchRating)
	router.POST("/download", handler.handleDownload)
	router.GET("/userPage", handler.handleUserPage)

	router.POST("/create", handler.handleCreateAccount)
	router.POST("/login", handler.handleLogin)
	router.GET("/logout", handler.handleLogout)

	if deps.StaticDir != "" {
		router.Static("/public", deps.StaticDir)
	}

	return router, nil
}

type httpHandler struct {
	sessions   *session.Service
	users      *users.Service
	catalog    *catalog.Service
	downloads  *downloads.Ledger
	logger     *zap.Logger
	cookieName string
	pdfDir     string
}

// resolveIdentity runs on every request. A missing or unknown cookie leaves
// the request anonymous; only a store failure aborts.
func (h *httpHandler) resolveIdentity(c *gin.Context) {
	token, err := c.Cookie(h.cookieName)
	if err != nil {
		token = ""
	}

	identity, err := h.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("session resolution failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Set(identityContextKey, identity)
	c.Next()
}

func currentIdentity(c *gin.Context) session.Identity {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return session.Identity{}
	}
	identity, ok := value.(session.Identity)
	if !ok {
		return session.Identity{}
	}
	return identity
}

// viewUser is the projection handed to templates for personalized chrome.
// A nil pointer renders the logged-out variant.
func viewUser(identity session.Identity) *session.Identity {
	if !identity.LoggedIn {
		return nil
	}
	return &identity
}

func (h *httpHandler) renderPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, gin.H{
			"User": viewUser(currentIdentity(c)),
		})
	}
}

func (h *httpHandler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"User":    viewUser(currentIdentity(c)),
		"Message": message,
	})
}

func (h *httpHandler) renderNoLogin(c *gin.Context) {
	c.HTML(http.StatusUnauthorized, "noLogin.html", gin.H{"User": nil})
}
