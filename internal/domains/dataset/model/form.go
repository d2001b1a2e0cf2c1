package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// AuthorForm is one submitted author entry.
type AuthorForm struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	ORCID       string `json:"orcid"`
}

func (a AuthorForm) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required.Error("author name is required"), validation.Length(1, 120)),
		validation.Field(&a.Affiliation, validation.Length(0, 120)),
		validation.Field(&a.ORCID,
			validation.When(a.ORCID != "",
				validation.Match(orcidPattern).Error("orcid must look like 0000-0000-0000-0000"),
			),
		),
	)
}

func (a AuthorForm) ToAuthor() Author {
	return Author{
		Name:        strings.TrimSpace(a.Name),
		Affiliation: optional(a.Affiliation),
		ORCID:       optional(a.ORCID),
	}
}

func (a *AuthorForm) normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Affiliation = strings.TrimSpace(a.Affiliation)
	a.ORCID = strings.TrimSpace(a.ORCID)
}

// AuthorFormFrom is the inverse of ToAuthor.
func AuthorFormFrom(a Author) AuthorForm {
	return AuthorForm{
		Name:        a.Name,
		Affiliation: deref(a.Affiliation),
		ORCID:       deref(a.ORCID),
	}
}

// FeatureModelForm is one feature-model entry of a dataset submission.
type FeatureModelForm struct {
	UVLFilename      string       `json:"uvl_filename"`
	Title            string       `json:"title"`
	Description      string       `json:"desc"`
	PublicationType  string       `json:"publication_type"`
	PublicationDOI   string       `json:"publication_doi"`
	Tags             string       `json:"tags"`
	Version          string       `json:"version"`
	Anonymous        bool         `json:"fm_anonymous"`
	Authors          []AuthorForm `json:"authors"`
	AnonymousAuthors []AuthorForm `json:"anonymous_authors"`
}

func (f FeatureModelForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.UVLFilename, validation.Required.Error("uvl_filename is required"), validation.Length(1, 120)),
		validation.Field(&f.Title, validation.Length(0, 120)),
		validation.Field(&f.PublicationType, validation.When(f.PublicationType != "", validation.In(PublicationTypeValues()...))),
		validation.Field(&f.PublicationDOI, validation.When(f.PublicationDOI != "", is.URL)),
		validation.Field(&f.Tags, validation.Length(0, 120)),
		validation.Field(&f.Authors),
		validation.Field(&f.AnonymousAuthors, validation.When(f.Anonymous, validation.Required.Error("anonymous feature models need anonymous authors"))),
	)
}

func (f *FeatureModelForm) normalize() {
	f.UVLFilename = strings.TrimSpace(f.UVLFilename)
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.PublicationType = string(publicationTypeOrNone(strings.TrimSpace(f.PublicationType)))
	f.PublicationDOI = strings.TrimSpace(f.PublicationDOI)
	f.Tags = strings.TrimSpace(f.Tags)
	f.Version = strings.TrimSpace(f.Version)
	f.Authors = normalizeAuthors(f.Authors)
	f.AnonymousAuthors = normalizeAuthors(f.AnonymousAuthors)
}

// FMMetaData returns the metadata fields of the entry.
func (f FeatureModelForm) FMMetaData() FMMetaData {
	return FMMetaData{
		UVLFilename:     f.UVLFilename,
		Title:           f.Title,
		Description:     f.Description,
		PublicationType: publicationTypeOrNone(f.PublicationType),
		PublicationDOI:  optional(f.PublicationDOI),
		Tags:            optional(f.Tags),
		UVLVersion:      optional(f.Version),
		FMAnonymous:     f.Anonymous,
	}
}

func (f FeatureModelForm) GetAuthors() []Author {
	return toAuthors(f.Authors)
}

func (f FeatureModelForm) GetAnonymousAuthors() []Author {
	return toAuthors(f.AnonymousAuthors)
}

// DataSetForm is a validated dataset submission.
type DataSetForm struct {
	Title            string             `json:"title"`
	Description      string             `json:"desc"`
	PublicationType  string             `json:"publication_type"`
	PublicationDOI   string             `json:"publication_doi"`
	DatasetDOI       string             `json:"dataset_doi"`
	Tags             string             `json:"tags"`
	Anonymous        bool               `json:"dataset_anonymous"`
	Authors          []AuthorForm       `json:"authors"`
	AnonymousAuthors []AuthorForm       `json:"anonymous_authors"`
	FeatureModels    []FeatureModelForm `json:"feature_models"`
}

// Normalize rewrites the form into the shape it is stored in: strings are
// trimmed, an empty publication type becomes "none", blank-named authors are
// dropped and nil lists become empty. Handlers call it before validating, so
// a stored dataset reads back as the normalized form.
func (f *DataSetForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.PublicationType = string(publicationTypeOrNone(strings.TrimSpace(f.PublicationType)))
	f.PublicationDOI = strings.TrimSpace(f.PublicationDOI)
	f.DatasetDOI = strings.TrimSpace(f.DatasetDOI)
	f.Tags = strings.TrimSpace(f.Tags)
	f.Authors = normalizeAuthors(f.Authors)
	f.AnonymousAuthors = normalizeAuthors(f.AnonymousAuthors)
	if f.FeatureModels == nil {
		f.FeatureModels = []FeatureModelForm{}
	}
	for i := range f.FeatureModels {
		f.FeatureModels[i].normalize()
	}
}

// Validate checks the form for creation; at least one feature model is required.
func (f DataSetForm) Validate() error {
	if err := f.ValidateMetadata(); err != nil {
		return err
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.FeatureModels, validation.Required.Error("at least one feature model is required")),
	)
}

// ValidateMetadata checks only the dataset-level fields, as used by updates.
func (f DataSetForm) ValidateMetadata() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("title is required"), validation.Length(1, 200)),
		validation.Field(&f.Description, validation.Required.Error("description is required")),
		validation.Field(&f.PublicationType, validation.When(f.PublicationType != "", validation.In(PublicationTypeValues()...))),
		validation.Field(&f.PublicationDOI, validation.When(f.PublicationDOI != "", is.URL)),
		validation.Field(&f.Tags, validation.Length(0, 120)),
		validation.Field(&f.Authors),
		validation.Field(&f.AnonymousAuthors, validation.When(f.Anonymous, validation.Required.Error("anonymous datasets need anonymous authors"))),
	)
}

// DSMetaData returns the dataset-level metadata fields.
func (f DataSetForm) DSMetaData() DSMetaData {
	return DSMetaData{
		Title:            f.Title,
		Description:      f.Description,
		PublicationType:  publicationTypeOrNone(f.PublicationType),
		PublicationDOI:   optional(f.PublicationDOI),
		DatasetDOI:       optional(f.DatasetDOI),
		Tags:             optional(f.Tags),
		DatasetAnonymous: f.Anonymous,
	}
}

func (f DataSetForm) GetAuthors() []Author {
	return toAuthors(f.Authors)
}

func (f DataSetForm) GetAnonymousAuthors() []Author {
	return toAuthors(f.AnonymousAuthors)
}

func toAuthors(forms []AuthorForm) []Author {
	authors := make([]Author, 0, len(forms))
	for _, a := range forms {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		authors = append(authors, a.ToAuthor())
	}
	return authors
}

func normalizeAuthors(forms []AuthorForm) []AuthorForm {
	kept := make([]AuthorForm, 0, len(forms))
	for _, a := range forms {
		a.normalize()
		if a.Name == "" {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func publicationTypeOrNone(v string) PublicationType {
	if v == "" {
		return PublicationTypeNone
	}
	return PublicationType(v)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// Deref returns "" for nil.
func Deref(v *string) string {
	return deref(v)
}
