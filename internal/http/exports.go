package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/domain"
	"task-tracker/internal/exporter"
	"task-tracker/internal/storage"
)

func (h *Handler) exportsEnabled(c *gin.Context) bool {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exports are not configured"})
		return false
	}
	return true
}

func (h *Handler) createExport(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok || !h.exportsEnabled(c) {
		return
	}

	key, err := h.exports.Enqueue(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, exporter.ErrNotStarted) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exports are not available"})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"key": key})
}

func (h *Handler) listExports(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok || !h.exportsEnabled(c) {
		return
	}

	objects, err := h.exports.List(c.Request.Context(), ownerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportURL(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok || !h.exportsEnabled(c) {
		return
	}

	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	url, err := h.exports.URL(c.Request.Context(), ownerID, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "export not found"})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) purgeExports(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok || !h.exportsEnabled(c) {
		return
	}

	if err := h.exports.Purge(c.Request.Context(), ownerID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "exports deleted successfully"})
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
