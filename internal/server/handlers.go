package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TLChilton/Milestone-2/internal/catalog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ratingMin = 1
	ratingMax = 5
)

func (h *httpHandler) handleLibrary(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.LoggedIn {
		h.renderNoLogin(c)
		return
	}

	sortKey := catalog.ParseSortKey(c.PostForm("sortType"))
	entries, err := h.catalog.List(c.Request.Context(), sortKey)
	if err != nil {
		h.logger.Error("catalog listing failed", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "The library is unavailable right now.")
		return
	}

	c.HTML(http.StatusOK, "myLibrary.html", gin.H{
		"User":    viewUser(identity),
		"Library": entries,
		"SortKey": string(sortKey),
	})
}

func (h *httpHandler) handleLibraryRating(c *gin.Context) {
	if h.applyRating(c) {
		c.Redirect(http.StatusFound, "/myLibrary")
	}
}

func (h *httpHandler) handleSearchRating(c *gin.Context) {
	if h.applyRating(c) {
		c.Status(http.StatusNoContent)
	}
}

// applyRating validates and applies the rating form shared by the library
// and search pages. It reports whether the caller should render its success
// response; failure responses are already written.
func (h *httpHandler) applyRating(c *gin.Context) bool {
	isbn := strings.TrimSpace(c.PostForm("book"))
	rating, err := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	if isbn == "" || err != nil || rating < ratingMin || rating > ratingMax {
		h.renderError(c, http.StatusBadRequest, "Ratings must be a whole number from 1 to 5.")
		return false
	}

	err = h.catalog.Rate(c.Request.Context(), isbn, rating)
	if errors.Is(err, catalog.ErrEntryNotFound) {
		h.renderError(c, http.StatusNotFound, "That book is not in the catalog.")
		return false
	}
	if err != nil {
		h.logger.Error("rating update failed", zap.String("isbn", isbn), zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "The rating could not be saved.")
		return false
	}
	return true
}

func (h *httpHandler) handleSearch(c *gin.Context) {
	term := c.PostForm("search")
	entry, err := h.catalog.Lookup(c.Request.Context(), term)
	if err != nil {
		h.logger.Error("catalog lookup failed", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Search is unavailable right now.")
		return
	}

	hasRatings := entry != nil && entry.NumReviews > 0
	c.HTML(http.StatusOK, "searchResults.html", gin.H{
		"User":       viewUser(currentIdentity(c)),
		"Search":     entry,
		"Term":       term,
		"HasRatings": hasRatings,
	})
}

func (h *httpHandler) handleDownload(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.LoggedIn {
		h.renderNoLogin(c)
		return
	}

	fileName := strings.TrimSpace(c.PostForm("fileName"))
	if fileName == "" || fileName != filepath.Base(fileName) {
		h.renderError(c, http.StatusBadRequest, "That file name is not valid.")
		return
	}

	path := filepath.Join(h.pdfDir, fileName)
	if _, err := os.Stat(path); err != nil {
		h.renderError(c, http.StatusNotFound, "That file is not in the library.")
		return
	}

	if err := h.downloads.RecordIfAbsent(c.Request.Context(), identity.UserID, fileName); err != nil {
		h.logger.Error("download record failed",
			zap.Int64("user_id", identity.UserID),
			zap.String("file_name", fileName),
			zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "The download could not be recorded.")
		return
	}

	c.FileAttachment(path, fileName)
}

func (h *httpHandler) handleUserPage(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.LoggedIn {
		h.renderNoLogin(c)
		return
	}

	history, err := h.downloads.History(c.Request.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("download history query failed",
			zap.Int64("user_id", identity.UserID), zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Your download history is unavailable.")
		return
	}

	c.HTML(http.StatusOK, "userPage.html", gin.H{
		"User":      viewUser(identity),
		"Downloads": history,
	})
}
