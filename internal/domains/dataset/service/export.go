package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/shared/utils"
	"datahub-backend/pkg/logger"
)

const catalogueSheet = "Datasets"

var catalogueHeaders = []string{
	"ID",
	"Title",
	"Publication Type",
	"Publication DOI",
	"Dataset DOI",
	"Tags",
	"Anonymous",
	"Authors",
	"Feature Models",
	"Files",
	"Total Size",
	"Created At",
}

// ExportCatalogue renders every synchronized dataset as one spreadsheet row.
// The endpoint is public, so unsynchronized drafts stay out.
func (s *dataSetService) ExportCatalogue(ctx context.Context) ([]byte, error) {
	datasets, err := s.repos.DataSets.ListSynchronized(ctx)
	if err != nil {
		return nil, err
	}

	f, err := s.buildCatalogueFile(datasets)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("Failed to close catalogue workbook", err)
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write catalogue: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *dataSetService) buildCatalogueFile(datasets []model.DataSet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", catalogueSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for colIdx, header := range catalogueHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(catalogueSheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(catalogueHeaders), 1)
		f.SetCellStyle(catalogueSheet, "A1", last, headerStyle)
	}

	for i, ds := range datasets {
		row := i + 2
		values := s.catalogueRow(ds)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(catalogueSheet, cell, v)
		}
	}

	return f, nil
}

func (s *dataSetService) catalogueRow(ds model.DataSet) []interface{} {
	md := ds.DSMetaData
	if md == nil {
		md = &model.DSMetaData{}
	}

	names := make([]string, 0, len(md.Authors))
	for _, a := range md.Authors {
		names = append(names, a.Name)
	}

	return []interface{}{
		ds.ID,
		md.Title,
		string(md.PublicationType),
		model.Deref(md.PublicationDOI),
		model.Deref(md.DatasetDOI),
		model.Deref(md.Tags),
		md.DatasetAnonymous,
		strings.Join(names, "; "),
		len(ds.FeatureModels),
		ds.FilesCount(),
		utils.HumanReadableSize(ds.TotalSizeBytes()),
		ds.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
