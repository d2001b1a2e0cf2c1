package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/service"
	userModel "datahub-backend/internal/domains/user/model"
	"datahub-backend/internal/infrastructure/storage"
	"datahub-backend/internal/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Stubs
// =============================================================================

// stubDataSets implements only what the tested routes call.
type stubDataSets struct {
	service.DataSetService
	exportRoot string
	datasets   map[int64]*model.DataSet
	created    *model.DataSetForm
}

func (s *stubDataSets) GetByID(ctx context.Context, id int64) (*model.DataSet, error) {
	ds, ok := s.datasets[id]
	if !ok {
		return nil, model.ErrDatasetNotFound
	}
	return ds, nil
}

func (s *stubDataSets) GetByDSMetaDataID(ctx context.Context, id int64) (*model.DataSet, error) {
	for _, ds := range s.datasets {
		if ds.DSMetaDataID == id {
			return ds, nil
		}
	}
	return nil, model.ErrDatasetNotFound
}

func (s *stubDataSets) ArchiveName(ds *model.DataSet) string {
	return fmt.Sprintf("dataset_%d.zip", ds.ID)
}

func (s *stubDataSets) ZipDataset(ds *model.DataSet) (string, error) {
	dir, err := os.MkdirTemp(s.exportRoot, storage.ExportDirPrefix)
	if err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(dir, s.ArchiveName(ds)))
	if err != nil {
		return "", err
	}
	defer f.Close()
	return dir, zip.NewWriter(f).Close()
}

func (s *stubDataSets) CreateFromForm(ctx context.Context, form *model.DataSetForm, user *userModel.User) (*model.DataSet, error) {
	s.created = form
	ds := &model.DataSet{ID: 100, UserID: user.ID, DSMetaData: &model.DSMetaData{Title: form.Title}}
	s.datasets[ds.ID] = ds
	return ds, nil
}

func (s *stubDataSets) MoveFeatureModels(ctx context.Context, ds *model.DataSet, user *userModel.User) error {
	return nil
}

func (s *stubDataSets) ToResponse(ds *model.DataSet) model.DataSetResponse {
	resp := model.DataSetResponse{ID: ds.ID, UserID: ds.UserID}
	if ds.DSMetaData != nil {
		resp.Title = ds.DSMetaData.Title
	}
	return resp
}

type stubDSMetaData struct {
	service.DSMetaDataService
	byDOI map[string]*model.DSMetaData
}

func (s *stubDSMetaData) FilterByDOI(ctx context.Context, doi string) (*model.DSMetaData, error) {
	return s.byDOI[doi], nil
}

type stubDOIMappings struct {
	mappings map[string]string
}

func (s *stubDOIMappings) GetNewDOI(ctx context.Context, oldDOI string) (string, bool, error) {
	newDOI, ok := s.mappings[oldDOI]
	return newDOI, ok, nil
}

type stubUsers struct {
	users map[int64]*userModel.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*userModel.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, userModel.ErrUserNotFound
	}
	return u, nil
}

type stubRecords struct {
	mu      sync.Mutex
	records []model.TrackingRecord
}

func (r *stubRecords) Exists(ctx context.Context, entityID int64, cookie string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EntityID == entityID && rec.Cookie == cookie {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRecords) Create(ctx context.Context, record *model.TrackingRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return true, nil
}

func (r *stubRecords) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

type recordingCleaner struct {
	dirs []string
	err  error
}

func (c *recordingCleaner) ScheduleExportCleanup(ctx context.Context, dir string) error {
	c.dirs = append(c.dirs, dir)
	return c.err
}

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	handler   *Handler
	datasets  *stubDataSets
	downloads *stubRecords
	views     *stubRecords
	cleaner   *recordingCleaner
	local     *storage.LocalStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	doi := "10.5281/zenodo.1"
	datasets := &stubDataSets{
		exportRoot: t.TempDir(),
		datasets: map[int64]*model.DataSet{
			1: {ID: 1, UserID: 7, DSMetaDataID: 11, DSMetaData: &model.DSMetaData{ID: 11, Title: "Cars", DatasetDOI: &doi}},
			2: {ID: 2, UserID: 8, DSMetaDataID: 12, DSMetaData: &model.DSMetaData{ID: 12, Title: "Bikes"}},
		},
	}
	downloads := &stubRecords{}
	views := &stubRecords{}
	cleaner := &recordingCleaner{}
	local := storage.NewLocalStorage(t.TempDir())

	h := NewHandler(Deps{
		DataSets: datasets,
		DSMetaData: &stubDSMetaData{byDOI: map[string]*model.DSMetaData{
			doi: datasets.datasets[1].DSMetaData,
		}},
		DOIMappings: &stubDOIMappings{mappings: map[string]string{"10.5281/zenodo.0": doi}},
		Users: &stubUsers{users: map[int64]*userModel.User{
			7: {ID: 7, Profile: userModel.UserProfile{Name: "Jane", Surname: "Doe"}},
		}},
		Storage: local,
		Trackers: Trackers{
			DatasetViews:     service.NewRecordTracker(views, model.DatasetViewRecords),
			DatasetDownloads: service.NewRecordTracker(downloads, model.DatasetDownloadRecords),
		},
		Cleaner: cleaner,
	})

	return &fixture{
		handler:   h,
		datasets:  datasets,
		downloads: downloads,
		views:     views,
		cleaner:   cleaner,
		local:     local,
	}
}

// asUser stands in for the JWT middleware.
func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id > 0 {
			c.Set(shared.ContextUserID, id)
		}
		c.Next()
	}
}

func (f *fixture) router(userID int64) *gin.Engine {
	r := gin.New()
	r.Use(asUser(userID))
	r.GET("/doi/*doi", f.handler.ViewByDOI)
	r.POST("/datasets/files", f.handler.UploadFile)
	r.POST("/datasets", f.handler.CreateDataSet)
	r.GET("/datasets/:id/download", f.handler.DownloadDataSet)
	r.GET("/datasets/:id/edit", f.handler.EditForm)
	return r
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/datasets/files", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// =============================================================================
// Upload
// =============================================================================

func TestUploadFile_StoresInTempFolderWithUniqueName(t *testing.T) {
	f := newFixture(t)
	r := f.router(7)

	for i, want := range []string{"car.uvl", "car (1).uvl"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "car.uvl", fmt.Sprintf("features %d", i)))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Data model.UploadResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, want, body.Data.Filename)
		assert.FileExists(t, filepath.Join(f.local.TempDir(7), want))
	}
}

func TestUploadFile_RejectsNonUVL(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(7).ServeHTTP(w, uploadRequest(t, "notes.txt", "hello"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// Create / edit
// =============================================================================

func TestCreateDataSet_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/datasets", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	f.router(0).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateDataSet_InvalidFormIsRejectedBeforeWorkflow(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/datasets", bytes.NewBufferString(`{"title":"","desc":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	f.router(7).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeInvalidForm)
	assert.Nil(t, f.datasets.created)
}

func TestCreateDataSet_ClearsTempFolder(t *testing.T) {
	f := newFixture(t)
	tempDir := f.local.TempDir(7)
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "leftover.uvl"), []byte("x"), 0o644))

	payload := `{"title":"Cars","desc":"Car models","feature_models":[{"uvl_filename":"car.uvl"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/datasets", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	f.router(7).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, f.datasets.created)
	assert.Equal(t, "Cars", f.datasets.created.Title)
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEditForm_ForbiddenForOtherUsers(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(7).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/2/edit", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEditForm_ReturnsProjection(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(7).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/1/edit", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data model.DataSetForm `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Cars", body.Data.Title)
	assert.Equal(t, "10.5281/zenodo.1", body.Data.DatasetDOI)
}

// =============================================================================
// Download
// =============================================================================

func TestDownloadDataSet_TracksOncePerCookie(t *testing.T) {
	f := newFixture(t)
	r := f.router(0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/1/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dataset_1.zip")
	issued := cookie(w, model.DatasetDownloadRecords.CookieName)
	require.NotNil(t, issued)
	assert.True(t, issued.HttpOnly)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/datasets/1/download", nil)
	req.AddCookie(&http.Cookie{Name: issued.Name, Value: issued.Value})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, issued.Value, cookie(w, issued.Name).Value)
	n, _ := f.downloads.Count(context.Background())
	assert.Equal(t, int64(1), n)

	require.Len(t, f.cleaner.dirs, 2, "every served archive is handed to the cleaner")
}

func TestDownloadDataSet_RemovesInlineWhenQueueFails(t *testing.T) {
	f := newFixture(t)
	f.cleaner.err = fmt.Errorf("redis unavailable")

	w := httptest.NewRecorder()
	f.router(0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/1/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.cleaner.dirs, 1)
	assert.NoDirExists(t, f.cleaner.dirs[0])
}

func TestDownloadDataSet_NotFound(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/404/download", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.cleaner.dirs)
}

// =============================================================================
// DOI
// =============================================================================

func TestViewByDOI_RedirectsRetiredDOI(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doi/10.5281/zenodo.0", nil))

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/doi/10.5281/zenodo.1", w.Header().Get("Location"))
	assert.Empty(t, f.views.records)
}

func TestViewByDOI_ShowsDatasetAndTracksView(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doi/10.5281/zenodo.1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Cars"`)
	assert.NotNil(t, cookie(w, model.DatasetViewRecords.CookieName))
	require.Len(t, f.views.records, 1)
	assert.Equal(t, int64(1), f.views.records[0].EntityID)
}

func TestViewByDOI_UnknownDOI(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router(0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doi/10.9999/none", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
