package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/service"
	userModel "datahub-backend/internal/domains/user/model"
	userRepo "datahub-backend/internal/domains/user/repository"
	"datahub-backend/internal/infrastructure/queue"
	"datahub-backend/internal/infrastructure/storage"
	"datahub-backend/internal/shared/middleware"
	"datahub-backend/internal/shared/response"
	"datahub-backend/internal/shared/utils"
	"datahub-backend/pkg/logger"
)

// Trackers groups the four view/download trackers.
type Trackers struct {
	DatasetViews     *service.RecordTracker
	DatasetDownloads *service.RecordTracker
	FileViews        *service.RecordTracker
	FileDownloads    *service.RecordTracker
}

// Deps are the collaborators of Handler. Cleaner and Mirror may be nil.
type Deps struct {
	DataSets     service.DataSetService
	DSMetaData   service.DSMetaDataService
	DOIMappings  service.DOIMappingService
	Hubfiles     service.HubfileService
	Users        userRepo.RepositoryInterface
	Storage      *storage.LocalStorage
	Trackers     Trackers
	Cleaner      queue.ExportCleaner
	Mirror       storage.ObjectStore
	SecureCookie bool
}

// Handler - HTTP handler of the dataset domain
type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// =====================================================
// UPLOADS
// =====================================================

// UploadFile - POST /api/v1/datasets/files
// Stores a .uvl file in the caller's temp folder; a clashing name gets a " (n)" suffix.
func (h *Handler) UploadFile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	file, err := c.FormFile("file")
	if err != nil || !strings.HasSuffix(file.Filename, ".uvl") {
		response.BadRequest(c, "No valid file")
		return
	}

	name, err := utils.SafeFilename(file.Filename)
	if err != nil {
		response.BadRequest(c, "No valid file")
		return
	}

	tempDir := h.Storage.TempDir(userID)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		logger.Error("Failed to create temp folder", err)
		response.InternalServerError(c, "failed to store upload")
		return
	}

	name = uniqueName(tempDir, name)
	if err := c.SaveUploadedFile(file, filepath.Join(tempDir, name)); err != nil {
		logger.Error("Failed to save upload", err)
		response.InternalServerError(c, "failed to store upload")
		return
	}

	response.Success(c, http.StatusOK, model.UploadResponse{
		Filename: name,
		Size:     file.Size,
	})
}

// DeleteFile - DELETE /api/v1/datasets/files/:name
func (h *Handler) DeleteFile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	name, err := utils.SafeFilename(c.Param("name"))
	if err != nil {
		response.BadRequest(c, "invalid file name")
		return
	}

	if err := os.Remove(filepath.Join(h.Storage.TempDir(userID), name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.NotFound(c, "file not found")
			return
		}
		response.InternalServerError(c, "failed to delete file")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// =====================================================
// CREATE / UPDATE
// =====================================================

// CreateDataSet - POST /api/v1/datasets
func (h *Handler) CreateDataSet(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var form model.DataSetForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		validationError(c, err)
		return
	}

	ds, err := h.DataSets.CreateFromForm(c.Request.Context(), &form, user)
	if err != nil {
		// A feature model named a file that was never uploaded.
		if errors.Is(err, fs.ErrNotExist) {
			err = model.ErrUploadMissing
		}
		h.handleError(c, err)
		return
	}

	if err := h.DataSets.MoveFeatureModels(c.Request.Context(), ds, user); err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.Storage.ClearDirectory(h.Storage.TempDir(user.ID)); err != nil {
		logger.Warn("Failed to clear temp folder", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	response.Created(c, h.DataSets.ToResponse(ds))
}

// EditForm - GET /api/v1/datasets/:id/edit
func (h *Handler) EditForm(c *gin.Context) {
	ds, ok := h.ownedDataSet(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, service.FormFromDataSet(ds))
}

// UpdateDataSet - PUT /api/v1/datasets/:id
func (h *Handler) UpdateDataSet(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	ds, ok := h.ownedDataSet(c)
	if !ok {
		return
	}

	var form model.DataSetForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	form.Normalize()
	if err := form.ValidateMetadata(); err != nil {
		validationError(c, err)
		return
	}

	updated, err := h.DataSets.UpdateFromForm(c.Request.Context(), &form, user, ds)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.DataSets.ToResponse(updated))
}

// =====================================================
// LISTING
// =====================================================

// ListDataSets - GET /api/v1/datasets
func (h *Handler) ListDataSets(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	ctx := c.Request.Context()

	synced, err := h.DataSets.GetSynchronized(ctx, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	unsynced, err := h.DataSets.GetUnsynchronized(ctx, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.ListDataSetsResponse{
		Synchronized:   h.toResponses(synced),
		Unsynchronized: h.toResponses(unsynced),
	})
}

// GetUnsynchronized - GET /api/v1/datasets/unsynchronized/:id
func (h *Handler) GetUnsynchronized(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	id, ok := utils.ParseInt64(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid dataset id")
		return
	}

	ds, err := h.DataSets.GetUnsynchronizedDataset(c.Request.Context(), userID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.DataSets.ToResponse(ds))
}

// =====================================================
// HELPERS
// =====================================================

func (h *Handler) toResponses(items []model.DataSet) []model.DataSetResponse {
	out := make([]model.DataSetResponse, 0, len(items))
	for i := range items {
		out = append(out, h.DataSets.ToResponse(&items[i]))
	}
	return out
}

func (h *Handler) currentUser(c *gin.Context) (*userModel.User, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, userModel.ErrUserNotFound) {
			response.Unauthorized(c, "unknown user")
			return nil, false
		}
		h.handleError(c, err)
		return nil, false
	}
	return user, true
}

// ownedDataSet loads :id and checks it belongs to the caller.
func (h *Handler) ownedDataSet(c *gin.Context) (*model.DataSet, bool) {
	userID, _ := middleware.UserID(c)

	id, ok := utils.ParseInt64(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid dataset id")
		return nil, false
	}

	ds, err := h.DataSets.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	if ds.UserID != userID {
		h.handleError(c, model.ErrForbidden)
		return nil, false
	}
	return ds, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)

	var dsErr *model.DataSetError
	code := "INTERNAL_SERVER_ERROR"
	message := "Internal server error"
	if errors.As(err, &dsErr) {
		code = dsErr.Code
		message = dsErr.Message
	}

	switch status {
	case http.StatusNotFound:
		response.NotFound(c, err.Error())
	case http.StatusForbidden:
		response.Forbidden(c, err.Error())
	case http.StatusBadRequest:
		response.BadRequest(c, err.Error())
	default:
		logger.ErrorWithFields("Dataset request failed", err, map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		response.ErrorResponse(c, status, code, message)
	}
}

func validationError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidForm, "invalid form", verrs)
		return
	}
	response.BadRequest(c, err.Error())
}

func uniqueName(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, os.ErrNotExist) {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
