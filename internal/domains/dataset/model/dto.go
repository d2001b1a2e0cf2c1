package model

import "time"

// Stats are the repository-wide counters shown on the landing page.
type Stats struct {
	SynchronizedDatasets int64 `json:"synchronized_datasets"`
	FeatureModels        int64 `json:"feature_models"`
	Authors              int64 `json:"authors"`
	DSMetaData           int64 `json:"ds_meta_data"`
	DatasetDownloads     int64 `json:"dataset_downloads"`
	DatasetViews         int64 `json:"dataset_views"`
}

type AuthorResponse struct {
	Name        string  `json:"name"`
	Affiliation *string `json:"affiliation"`
	ORCID       *string `json:"orcid"`
}

type FileResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Checksum          string `json:"checksum"`
	Size              int64  `json:"size_in_bytes"`
	SizeHumanReadable string `json:"size_in_human_format"`
	URL               string `json:"url"`
}

type FeatureModelResponse struct {
	ID              int64            `json:"id"`
	UVLFilename     string           `json:"uvl_filename"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	PublicationType PublicationType  `json:"publication_type"`
	PublicationDOI  *string          `json:"publication_doi"`
	Tags            []string         `json:"tags"`
	UVLVersion      *string          `json:"uvl_version"`
	Authors         []AuthorResponse `json:"authors"`
	Files           []FileResponse   `json:"files"`
}

type DataSetResponse struct {
	ID                     int64                  `json:"id"`
	UserID                 int64                  `json:"user_id"`
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	PublicationType        PublicationType        `json:"publication_type"`
	PublicationDOI         *string                `json:"publication_doi"`
	DatasetDOI             *string                `json:"dataset_doi"`
	DOIURL                 string                 `json:"url,omitempty"`
	Tags                   []string               `json:"tags"`
	Anonymous              bool                   `json:"dataset_anonymous"`
	Synchronized           bool                   `json:"synchronized"`
	CreatedAt              time.Time              `json:"created_at"`
	Authors                []AuthorResponse       `json:"authors"`
	FeatureModels          []FeatureModelResponse `json:"feature_models"`
	FilesCount             int                    `json:"files_count"`
	TotalSizeInBytes       int64                  `json:"total_size_in_bytes"`
	TotalSizeHumanReadable string                 `json:"total_size_in_human_format"`
}

// ListDataSetsResponse splits a user's datasets by registry state.
type ListDataSetsResponse struct {
	Synchronized   []DataSetResponse `json:"synchronized"`
	Unsynchronized []DataSetResponse `json:"unsynchronized"`
}

// UploadResponse is returned after a file lands in the temp folder.
type UploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}
