package model

// FMMetaData is the bibliographic record of a single feature model.
type FMMetaData struct {
	ID              int64           `json:"id" db:"id"`
	UVLFilename     string          `json:"uvl_filename" db:"uvl_filename"`
	Title           string          `json:"title" db:"title"`
	Description     string          `json:"description" db:"description"`
	PublicationType PublicationType `json:"publication_type" db:"publication_type"`
	PublicationDOI  *string         `json:"publication_doi" db:"publication_doi"`
	Tags            *string         `json:"tags" db:"tags"`
	UVLVersion      *string         `json:"uvl_version" db:"uvl_version"`
	FMAnonymous     bool            `json:"fm_anonymous" db:"fm_anonymous"`

	Authors []Author `json:"authors"`
}

type FeatureModel struct {
	ID           int64 `json:"id" db:"id"`
	DataSetID    int64 `json:"data_set_id" db:"data_set_id"`
	FMMetaDataID int64 `json:"fm_meta_data_id" db:"fm_meta_data_id"`

	FMMetaData *FMMetaData `json:"fm_meta_data"`
	Files      []Hubfile   `json:"files"`
}

// Hubfile is an uploaded file. Checksum and Size are taken once, at creation.
type Hubfile struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Checksum       string `json:"checksum" db:"checksum"`
	Size           int64  `json:"size" db:"size"`
	FeatureModelID int64  `json:"feature_model_id" db:"feature_model_id"`
}

// HubfileLocation is a file together with the ids needed to find it on disk.
type HubfileLocation struct {
	Hubfile
	DataSetID int64
	UserID    int64
}
