package model

import (
	"time"
)

// PublicationType classifies the publication a dataset or feature model belongs to.
type PublicationType string

const (
	PublicationTypeNone                  PublicationType = "none"
	PublicationTypeAnnotationCollection  PublicationType = "annotationcollection"
	PublicationTypeBook                  PublicationType = "book"
	PublicationTypeBookSection           PublicationType = "section"
	PublicationTypeConferencePaper       PublicationType = "conferencepaper"
	PublicationTypeDataManagementPlan    PublicationType = "datamanagementplan"
	PublicationTypeJournalArticle        PublicationType = "article"
	PublicationTypePatent                PublicationType = "patent"
	PublicationTypePreprint              PublicationType = "preprint"
	PublicationTypeProjectDeliverable    PublicationType = "deliverable"
	PublicationTypeProjectMilestone      PublicationType = "milestone"
	PublicationTypeProposal              PublicationType = "proposal"
	PublicationTypeReport                PublicationType = "report"
	PublicationTypeSoftwareDocumentation PublicationType = "softwaredocumentation"
	PublicationTypeTaxonomicTreatment    PublicationType = "taxonomictreatment"
	PublicationTypeTechnicalNote         PublicationType = "technicalnote"
	PublicationTypeThesis                PublicationType = "thesis"
	PublicationTypeWorkingPaper          PublicationType = "workingpaper"
	PublicationTypeOther                 PublicationType = "other"
)

var publicationTypes = map[PublicationType]bool{
	PublicationTypeNone:                  true,
	PublicationTypeAnnotationCollection:  true,
	PublicationTypeBook:                  true,
	PublicationTypeBookSection:           true,
	PublicationTypeConferencePaper:       true,
	PublicationTypeDataManagementPlan:    true,
	PublicationTypeJournalArticle:        true,
	PublicationTypePatent:                true,
	PublicationTypePreprint:              true,
	PublicationTypeProjectDeliverable:    true,
	PublicationTypeProjectMilestone:      true,
	PublicationTypeProposal:              true,
	PublicationTypeReport:                true,
	PublicationTypeSoftwareDocumentation: true,
	PublicationTypeTaxonomicTreatment:    true,
	PublicationTypeTechnicalNote:         true,
	PublicationTypeThesis:                true,
	PublicationTypeWorkingPaper:          true,
	PublicationTypeOther:                 true,
}

func (p PublicationType) IsValid() bool {
	return publicationTypes[p]
}

// PublicationTypeValues lists every accepted value, for validation rules.
func PublicationTypeValues() []interface{} {
	values := make([]interface{}, 0, len(publicationTypes))
	for p := range publicationTypes {
		values = append(values, string(p))
	}
	return values
}

// DSMetaData is the bibliographic record of a dataset.
type DSMetaData struct {
	ID               int64           `json:"id" db:"id"`
	DepositionID     *int64          `json:"deposition_id" db:"deposition_id"`
	Title            string          `json:"title" db:"title"`
	Description      string          `json:"description" db:"description"`
	PublicationType  PublicationType `json:"publication_type" db:"publication_type"`
	PublicationDOI   *string         `json:"publication_doi" db:"publication_doi"`
	DatasetDOI       *string         `json:"dataset_doi" db:"dataset_doi"`
	Tags             *string         `json:"tags" db:"tags"`
	DatasetAnonymous bool            `json:"dataset_anonymous" db:"dataset_anonymous"`

	Authors []Author `json:"authors"`
}

// Author belongs to either a DSMetaData or an FMMetaData, never both.
type Author struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Affiliation  *string `json:"affiliation" db:"affiliation"`
	ORCID        *string `json:"orcid" db:"orcid"`
	DSMetaDataID *int64  `json:"ds_meta_data_id,omitempty" db:"ds_meta_data_id"`
	FMMetaDataID *int64  `json:"fm_meta_data_id,omitempty" db:"fm_meta_data_id"`
}

// DataSet is the aggregate root: metadata, authors, feature models and files.
type DataSet struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	DSMetaDataID int64     `json:"ds_meta_data_id" db:"ds_meta_data_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	DSMetaData    *DSMetaData    `json:"ds_meta_data"`
	FeatureModels []FeatureModel `json:"feature_models"`
}

// IsSynchronized reports whether the dataset was published to the DOI registry.
func (d *DataSet) IsSynchronized() bool {
	return d.DSMetaData != nil && d.DSMetaData.DatasetDOI != nil && *d.DSMetaData.DatasetDOI != ""
}

func (d *DataSet) FilesCount() int {
	count := 0
	for _, fm := range d.FeatureModels {
		count += len(fm.Files)
	}
	return count
}

func (d *DataSet) TotalSizeBytes() int64 {
	var total int64
	for _, fm := range d.FeatureModels {
		for _, f := range fm.Files {
			total += f.Size
		}
	}
	return total
}

// DOIMapping redirects a retired dataset DOI to its replacement.
type DOIMapping struct {
	ID            int64  `json:"id" db:"id"`
	DatasetDOIOld string `json:"dataset_doi_old" db:"dataset_doi_old"`
	DatasetDOINew string `json:"dataset_doi_new" db:"dataset_doi_new"`
}
