package service

import (
	"strings"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/shared/utils"
)

func (s *dataSetService) ToResponse(ds *model.DataSet) model.DataSetResponse {
	resp := model.DataSetResponse{
		ID:                     ds.ID,
		UserID:                 ds.UserID,
		Synchronized:           ds.IsSynchronized(),
		CreatedAt:              ds.CreatedAt,
		DOIURL:                 s.GetDatasetDOIURL(ds),
		FilesCount:             ds.FilesCount(),
		TotalSizeInBytes:       ds.TotalSizeBytes(),
		TotalSizeHumanReadable: utils.HumanReadableSize(ds.TotalSizeBytes()),
		Authors:                []model.AuthorResponse{},
		FeatureModels:          []model.FeatureModelResponse{},
	}

	if md := ds.DSMetaData; md != nil {
		resp.Title = md.Title
		resp.Description = md.Description
		resp.PublicationType = md.PublicationType
		resp.PublicationDOI = md.PublicationDOI
		resp.DatasetDOI = md.DatasetDOI
		resp.Tags = splitTags(md.Tags)
		resp.Anonymous = md.DatasetAnonymous
		resp.Authors = authorResponses(md.Authors)
	}

	for _, fm := range ds.FeatureModels {
		resp.FeatureModels = append(resp.FeatureModels, s.featureModelResponse(fm))
	}
	return resp
}

func (s *dataSetService) featureModelResponse(fm model.FeatureModel) model.FeatureModelResponse {
	resp := model.FeatureModelResponse{
		ID:      fm.ID,
		Authors: []model.AuthorResponse{},
		Files:   make([]model.FileResponse, 0, len(fm.Files)),
	}
	if md := fm.FMMetaData; md != nil {
		resp.UVLFilename = md.UVLFilename
		resp.Title = md.Title
		resp.Description = md.Description
		resp.PublicationType = md.PublicationType
		resp.PublicationDOI = md.PublicationDOI
		resp.Tags = splitTags(md.Tags)
		resp.UVLVersion = md.UVLVersion
		resp.Authors = authorResponses(md.Authors)
	}
	for _, f := range fm.Files {
		resp.Files = append(resp.Files, model.FileResponse{
			ID:                f.ID,
			Name:              f.Name,
			Checksum:          f.Checksum,
			Size:              f.Size,
			SizeHumanReadable: utils.HumanReadableSize(f.Size),
			URL:               utils.FileURL(s.opts.Domain, s.opts.Production, f.ID),
		})
	}
	return resp
}

func authorResponses(authors []model.Author) []model.AuthorResponse {
	out := make([]model.AuthorResponse, 0, len(authors))
	for _, a := range authors {
		out = append(out, model.AuthorResponse{
			Name:        a.Name,
			Affiliation: a.Affiliation,
			ORCID:       a.ORCID,
		})
	}
	return out
}

func splitTags(tags *string) []string {
	out := []string{}
	if tags == nil {
		return out
	}
	for _, t := range strings.Split(*tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
