package service

import (
	"datahub-backend/internal/domains/dataset/model"
)

// FormFromDataSet projects a persisted aggregate into a fresh edit form.
// Author and feature-model order follow the aggregate.
func FormFromDataSet(ds *model.DataSet) *model.DataSetForm {
	form := &model.DataSetForm{
		Authors:          []model.AuthorForm{},
		AnonymousAuthors: []model.AuthorForm{},
		FeatureModels:    []model.FeatureModelForm{},
	}
	if ds == nil || ds.DSMetaData == nil {
		return form
	}

	md := ds.DSMetaData
	form.Title = md.Title
	form.Description = md.Description
	form.PublicationType = string(md.PublicationType)
	form.PublicationDOI = model.Deref(md.PublicationDOI)
	form.DatasetDOI = model.Deref(md.DatasetDOI)
	form.Tags = model.Deref(md.Tags)
	form.Anonymous = md.DatasetAnonymous

	authors := authorForms(md.Authors)
	if md.DatasetAnonymous {
		form.AnonymousAuthors = authors
	} else {
		form.Authors = authors
	}

	for _, fm := range ds.FeatureModels {
		if fm.FMMetaData == nil {
			continue
		}
		form.FeatureModels = append(form.FeatureModels, featureModelForm(fm.FMMetaData))
	}
	return form
}

func featureModelForm(md *model.FMMetaData) model.FeatureModelForm {
	entry := model.FeatureModelForm{
		UVLFilename:      md.UVLFilename,
		Title:            md.Title,
		Description:      md.Description,
		PublicationType:  string(md.PublicationType),
		PublicationDOI:   model.Deref(md.PublicationDOI),
		Tags:             model.Deref(md.Tags),
		Version:          model.Deref(md.UVLVersion),
		Anonymous:        md.FMAnonymous,
		Authors:          []model.AuthorForm{},
		AnonymousAuthors: []model.AuthorForm{},
	}

	authors := authorForms(md.Authors)
	if md.FMAnonymous {
		entry.AnonymousAuthors = authors
	} else {
		entry.Authors = authors
	}
	return entry
}

func authorForms(authors []model.Author) []model.AuthorForm {
	forms := make([]model.AuthorForm, 0, len(authors))
	for _, a := range authors {
		forms = append(forms, model.AuthorFormFrom(a))
	}
	return forms
}
