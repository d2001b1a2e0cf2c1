package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"datahub-backend/internal/domains/dataset/model"
)

// =============================================================================
// In-memory store with pgx.Tx semantics
// =============================================================================

// memStore keeps committed rows only. Writes staged on a fakeTx become visible
// when the tx commits, and ids are consumed even on rollback, like sequences.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	dsMetaData map[int64]model.DSMetaData
	fmMetaData map[int64]model.FMMetaData
	authors    map[int64]model.Author
	datasets   map[int64]model.DataSet
	features   map[int64]model.FeatureModel
	files      map[int64]model.Hubfile

	// failOn makes the named write fail, simulating a constraint violation.
	failOn map[string]error

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		dsMetaData: map[int64]model.DSMetaData{},
		fmMetaData: map[int64]model.FMMetaData{},
		authors:    map[int64]model.Author{},
		datasets:   map[int64]model.DataSet{},
		features:   map[int64]model.FeatureModel{},
		files:      map[int64]model.Hubfile{},
		failOn:     map[string]error{},
	}
}

func (s *memStore) id() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failOn[op]
}

// fakeTx overrides the pgx.Tx methods the repositories use. Any other method
// panics through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	store  *memStore
	staged []func()
	closed bool
}

func (tx *fakeTx) stage(op func()) {
	tx.staged = append(tx.staged, op)
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.store.mu.Lock()
	for _, op := range tx.staged {
		op()
	}
	tx.store.commits++
	tx.store.mu.Unlock()
	tx.closed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.store.mu.Lock()
	tx.store.rollbacks++
	tx.store.mu.Unlock()
	tx.staged = nil
	tx.closed = true
	return nil
}

func asFake(tx pgx.Tx) *fakeTx {
	return tx.(*fakeTx)
}

// =============================================================================
// Dataset repository
// =============================================================================

type memDataSetRepo struct{ s *memStore }

func (r *memDataSetRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{store: r.s}, nil
}

func (r *memDataSetRepo) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *memDataSetRepo) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

func (r *memDataSetRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, ds *model.DataSet) error {
	if err := r.s.fail("data_set"); err != nil {
		return err
	}
	ds.ID = r.s.id()
	ds.CreatedAt = time.Now()
	row := model.DataSet{ID: ds.ID, UserID: ds.UserID, DSMetaDataID: ds.DSMetaDataID, CreatedAt: ds.CreatedAt}
	asFake(tx).stage(func() { r.s.datasets[row.ID] = row })
	return nil
}

func (r *memDataSetRepo) GetByID(ctx context.Context, id int64) (*model.DataSet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.datasets[id]
	if !ok {
		return nil, model.ErrDatasetNotFound
	}
	return r.assemble(row), nil
}

func (r *memDataSetRepo) GetByDSMetaDataID(ctx context.Context, dsMetaDataID int64) (*model.DataSet, error) {
	items := r.filter(func(ds model.DataSet) bool { return ds.DSMetaDataID == dsMetaDataID })
	if len(items) == 0 {
		return nil, model.ErrDatasetNotFound
	}
	return &items[0], nil
}

func (r *memDataSetRepo) GetSynchronized(ctx context.Context, userID int64) ([]model.DataSet, error) {
	return r.filter(func(ds model.DataSet) bool { return ds.UserID == userID && ds.IsSynchronized() }), nil
}

func (r *memDataSetRepo) GetUnsynchronized(ctx context.Context, userID int64) ([]model.DataSet, error) {
	return r.filter(func(ds model.DataSet) bool { return ds.UserID == userID && !ds.IsSynchronized() }), nil
}

func (r *memDataSetRepo) GetUnsynchronizedDataset(ctx context.Context, userID, datasetID int64) (*model.DataSet, error) {
	items := r.filter(func(ds model.DataSet) bool {
		return ds.ID == datasetID && ds.UserID == userID && !ds.IsSynchronized()
	})
	if len(items) == 0 {
		return nil, model.ErrDatasetNotFound
	}
	return &items[0], nil
}

func (r *memDataSetRepo) LatestSynchronized(ctx context.Context, limit int) ([]model.DataSet, error) {
	items := r.filter(func(ds model.DataSet) bool { return ds.IsSynchronized() })
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *memDataSetRepo) ListSynchronized(ctx context.Context) ([]model.DataSet, error) {
	return r.filter(func(ds model.DataSet) bool { return ds.IsSynchronized() }), nil
}

func (r *memDataSetRepo) CountSynchronized(ctx context.Context) (int64, error) {
	return int64(len(r.filter(func(ds model.DataSet) bool { return ds.IsSynchronized() }))), nil
}

func (r *memDataSetRepo) filter(keep func(model.DataSet) bool) []model.DataSet {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []model.DataSet{}
	for _, id := range sortedKeys(r.s.datasets) {
		ds := r.assemble(r.s.datasets[id])
		if keep(*ds) {
			out = append(out, *ds)
		}
	}
	return out
}

// assemble builds the aggregate the way the postgres repository does.
// Callers hold the lock.
func (r *memDataSetRepo) assemble(row model.DataSet) *model.DataSet {
	ds := row
	md := r.s.dsMetaData[row.DSMetaDataID]
	md.Authors = r.authorsOf(func(a model.Author) bool {
		return a.DSMetaDataID != nil && *a.DSMetaDataID == md.ID
	})
	ds.DSMetaData = &md

	ds.FeatureModels = []model.FeatureModel{}
	for _, id := range sortedKeys(r.s.features) {
		fm := r.s.features[id]
		if fm.DataSetID != ds.ID {
			continue
		}
		fmMD := r.s.fmMetaData[fm.FMMetaDataID]
		fmMD.Authors = r.authorsOf(func(a model.Author) bool {
			return a.FMMetaDataID != nil && *a.FMMetaDataID == fmMD.ID
		})
		fm.FMMetaData = &fmMD

		fm.Files = []model.Hubfile{}
		for _, fid := range sortedKeys(r.s.files) {
			if f := r.s.files[fid]; f.FeatureModelID == fm.ID {
				fm.Files = append(fm.Files, f)
			}
		}
		ds.FeatureModels = append(ds.FeatureModels, fm)
	}
	return &ds
}

func (r *memDataSetRepo) authorsOf(keep func(model.Author) bool) []model.Author {
	out := []model.Author{}
	for _, id := range sortedKeys(r.s.authors) {
		if a := r.s.authors[id]; keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// =============================================================================
// Metadata, author, feature model and file repositories
// =============================================================================

type memDSMetaDataRepo struct{ s *memStore }

func (r *memDSMetaDataRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, md *model.DSMetaData) error {
	if err := r.s.fail("ds_meta_data"); err != nil {
		return err
	}
	md.ID = r.s.id()
	row := *md
	row.Authors = nil
	asFake(tx).stage(func() { r.s.dsMetaData[row.ID] = row })
	return nil
}

func (r *memDSMetaDataRepo) UpdateWithTx(ctx context.Context, tx pgx.Tx, md *model.DSMetaData) error {
	r.s.mu.Lock()
	_, ok := r.s.dsMetaData[md.ID]
	r.s.mu.Unlock()
	if !ok {
		return model.ErrDSMetaDataNotFound
	}
	row := *md
	row.Authors = nil
	asFake(tx).stage(func() { r.s.dsMetaData[row.ID] = row })
	return nil
}

func (r *memDSMetaDataRepo) Update(ctx context.Context, md *model.DSMetaData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.dsMetaData[md.ID]; !ok {
		return model.ErrDSMetaDataNotFound
	}
	row := *md
	row.Authors = nil
	r.s.dsMetaData[row.ID] = row
	return nil
}

func (r *memDSMetaDataRepo) FilterByDOI(ctx context.Context, doi string) (*model.DSMetaData, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedKeys(r.s.dsMetaData) {
		md := r.s.dsMetaData[id]
		if md.DatasetDOI != nil && *md.DatasetDOI == doi {
			return &md, nil
		}
	}
	return nil, nil
}

func (r *memDSMetaDataRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.dsMetaData)), nil
}

type memFMMetaDataRepo struct{ s *memStore }

func (r *memFMMetaDataRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, md *model.FMMetaData) error {
	if err := r.s.fail("fm_meta_data"); err != nil {
		return err
	}
	md.ID = r.s.id()
	row := *md
	row.Authors = nil
	asFake(tx).stage(func() { r.s.fmMetaData[row.ID] = row })
	return nil
}

type memAuthorRepo struct{ s *memStore }

func (r *memAuthorRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, author *model.Author) error {
	if err := r.s.fail("author"); err != nil {
		return err
	}
	author.ID = r.s.id()
	row := *author
	asFake(tx).stage(func() { r.s.authors[row.ID] = row })
	return nil
}

func (r *memAuthorRepo) DeleteByDSMetaDataIDWithTx(ctx context.Context, tx pgx.Tx, dsMetaDataID int64) error {
	asFake(tx).stage(func() {
		for id, a := range r.s.authors {
			if a.DSMetaDataID != nil && *a.DSMetaDataID == dsMetaDataID {
				delete(r.s.authors, id)
			}
		}
	})
	return nil
}

func (r *memAuthorRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.authors)), nil
}

type memFeatureModelRepo struct{ s *memStore }

func (r *memFeatureModelRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, fm *model.FeatureModel) error {
	if err := r.s.fail("feature_model"); err != nil {
		return err
	}
	fm.ID = r.s.id()
	row := model.FeatureModel{ID: fm.ID, DataSetID: fm.DataSetID, FMMetaDataID: fm.FMMetaDataID}
	asFake(tx).stage(func() { r.s.features[row.ID] = row })
	return nil
}

func (r *memFeatureModelRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.features)), nil
}

type memHubfileRepo struct{ s *memStore }

func (r *memHubfileRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, file *model.Hubfile) error {
	if err := r.s.fail("file"); err != nil {
		return err
	}
	file.ID = r.s.id()
	row := *file
	asFake(tx).stage(func() { r.s.files[row.ID] = row })
	return nil
}

func (r *memHubfileRepo) GetByID(ctx context.Context, id int64) (*model.HubfileLocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.files[id]
	if !ok {
		return nil, model.ErrHubfileNotFound
	}
	fm := r.s.features[f.FeatureModelID]
	ds := r.s.datasets[fm.DataSetID]
	return &model.HubfileLocation{Hubfile: f, DataSetID: ds.ID, UserID: ds.UserID}, nil
}

// =============================================================================
// Tracking and DOI repositories
// =============================================================================

type memRecordRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []model.TrackingRecord
}

func (r *memRecordRepo) Exists(ctx context.Context, entityID int64, cookie string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EntityID == entityID && rec.Cookie == cookie {
			return true, nil
		}
	}
	return false, nil
}

// Create mirrors INSERT ... ON CONFLICT (entity, cookie) DO NOTHING.
func (r *memRecordRepo) Create(ctx context.Context, record *model.TrackingRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EntityID == record.EntityID && rec.Cookie == record.Cookie {
			return false, nil
		}
	}
	r.nextID++
	record.ID = r.nextID
	r.records = append(r.records, *record)
	return true, nil
}

func (r *memRecordRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

type memDOIMappingRepo struct {
	mappings map[string]string
	calls    int
	err      error
}

func (r *memDOIMappingRepo) GetByOldDOI(ctx context.Context, oldDOI string) (*model.DOIMapping, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	newDOI, ok := r.mappings[strings.TrimSpace(oldDOI)]
	if !ok {
		return nil, nil
	}
	return &model.DOIMapping{DatasetDOIOld: oldDOI, DatasetDOINew: newDOI}, nil
}

// =============================================================================
// Wiring
// =============================================================================

func newMemRepositories(s *memStore) Repositories {
	return Repositories{
		DataSets:      &memDataSetRepo{s: s},
		DSMetaData:    &memDSMetaDataRepo{s: s},
		FMMetaData:    &memFMMetaDataRepo{s: s},
		Authors:       &memAuthorRepo{s: s},
		FeatureModels: &memFeatureModelRepo{s: s},
		Hubfiles:      &memHubfileRepo{s: s},
		Downloads:     &memRecordRepo{},
		Views:         &memRecordRepo{},
	}
}
