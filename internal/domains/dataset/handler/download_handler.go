package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/service"
	"datahub-backend/internal/shared/middleware"
	"datahub-backend/internal/shared/response"
	"datahub-backend/internal/shared/utils"
	"datahub-backend/pkg/logger"
)

const (
	archiveURLHeader = "X-Archive-URL"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// =====================================================
// DATASET DOWNLOAD
// =====================================================

// DownloadDataSet - GET /api/v1/datasets/:id/download
// Streams the zip archive and records the download once per cookie.
func (h *Handler) DownloadDataSet(c *gin.Context) {
	id, ok := utils.ParseInt64(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid dataset id")
		return
	}

	ctx := c.Request.Context()
	ds, err := h.DataSets.GetByID(ctx, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	tempDir, err := h.DataSets.ZipDataset(ds)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer h.scheduleCleanup(tempDir)

	if !h.track(c, h.Trackers.DatasetDownloads, ds.ID) {
		return
	}

	name := h.DataSets.ArchiveName(ds)
	archive := filepath.Join(tempDir, name)
	h.mirrorArchive(ctx, c, ds, archive, name)

	c.FileAttachment(archive, name)
}

// mirrorArchive uploads the archive to object storage and exposes a presigned
// link. Failures are logged only.
func (h *Handler) mirrorArchive(ctx context.Context, c *gin.Context, ds *model.DataSet, archive, name string) {
	if h.Mirror == nil {
		return
	}

	key := fmt.Sprintf("exports/user_%d/%s", ds.UserID, name)
	if err := h.Mirror.UploadFile(ctx, key, archive, "application/zip"); err != nil {
		logger.Warn("Archive mirror upload failed", map[string]interface{}{
			"dataset_id": ds.ID,
			"error":      err.Error(),
		})
		return
	}

	url, err := h.Mirror.PresignedURL(ctx, key, name)
	if err != nil {
		logger.Warn("Archive presign failed", map[string]interface{}{
			"dataset_id": ds.ID,
			"error":      err.Error(),
		})
		return
	}
	c.Header(archiveURLHeader, url)
}

// scheduleCleanup hands the export directory to the worker, removing it
// inline when the queue is unavailable.
func (h *Handler) scheduleCleanup(dir string) {
	if h.Cleaner != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := h.Cleaner.ScheduleExportCleanup(ctx, dir)
		if err == nil {
			return
		}
		logger.Warn("Export cleanup enqueue failed, removing inline", map[string]interface{}{
			"dir":   dir,
			"error": err.Error(),
		})
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.Error("Failed to remove export directory "+dir, err)
	}
}

// =====================================================
// DOI VIEW
// =====================================================

// ViewByDOI - GET /doi/*doi
// Retired DOIs redirect permanently to their replacement.
func (h *Handler) ViewByDOI(c *gin.Context) {
	doi := strings.TrimPrefix(c.Param("doi"), "/")
	if doi == "" {
		response.NotFound(c, "dataset not found")
		return
	}
	ctx := c.Request.Context()

	newDOI, found, err := h.DOIMappings.GetNewDOI(ctx, doi)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if found {
		c.Redirect(http.StatusMovedPermanently, "/doi/"+newDOI)
		return
	}

	md, err := h.DSMetaData.FilterByDOI(ctx, doi)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if md == nil {
		response.NotFound(c, "dataset not found")
		return
	}

	ds, err := h.DataSets.GetByDSMetaDataID(ctx, md.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if !h.track(c, h.Trackers.DatasetViews, ds.ID) {
		return
	}

	response.Success(c, http.StatusOK, h.DataSets.ToResponse(ds))
}

// =====================================================
// HUBFILES
// =====================================================

// DownloadHubfile - GET /api/v1/hubfiles/:id/download
func (h *Handler) DownloadHubfile(c *gin.Context) {
	id, ok := utils.ParseInt64(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid file id")
		return
	}

	file, err := h.Hubfiles.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	path := h.Hubfiles.FullPath(file)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c, "file content not found")
		return
	}

	if !h.track(c, h.Trackers.FileDownloads, file.ID) {
		return
	}

	c.FileAttachment(path, file.Name)
}

// ViewHubfile - GET /api/v1/hubfiles/:id
// Returns the file metadata and content, recording the view.
func (h *Handler) ViewHubfile(c *gin.Context) {
	id, ok := utils.ParseInt64(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid file id")
		return
	}

	file, err := h.Hubfiles.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := os.ReadFile(h.Hubfiles.FullPath(file))
	if err != nil {
		response.NotFound(c, "file content not found")
		return
	}

	if !h.track(c, h.Trackers.FileViews, file.ID) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"file": model.FileResponse{
			ID:                file.ID,
			Name:              file.Name,
			Checksum:          file.Checksum,
			Size:              file.Size,
			SizeHumanReadable: utils.HumanReadableSize(file.Size),
			URL:               h.Hubfiles.FileURL(file.ID),
		},
		"content": string(content),
	})
}

// =====================================================
// CATALOGUE / STATS
// =====================================================

// ExportCatalogue - GET /api/v1/datasets/export.xlsx
func (h *Handler) ExportCatalogue(c *gin.Context) {
	data, err := h.DataSets.ExportCatalogue(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("datasets_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Stats - GET /api/v1/stats
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.DataSets.Stats(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	latest, err := h.DataSets.LatestSynchronized(ctx, 5)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"stats":           stats,
		"latest_datasets": h.toResponses(latest),
	})
}

// track resolves the tracking cookie and sets it on the response.
// It writes an error response and returns false on failure.
func (h *Handler) track(c *gin.Context, tracker *service.RecordTracker, entityID int64) bool {
	incoming, _ := c.Cookie(tracker.CookieName())

	var userID *int64
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	token, err := tracker.ResolveOrIssueToken(c.Request.Context(), entityID, userID, incoming)
	if err != nil {
		h.handleError(c, err)
		return false
	}

	c.SetCookie(tracker.CookieName(), token, 0, "/", "", h.SecureCookie, true)
	return true
}
