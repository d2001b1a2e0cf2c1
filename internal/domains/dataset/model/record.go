package model

import "time"

// TrackingRecord marks that a client token viewed or downloaded an entity
// (a dataset or a hubfile, depending on the table it lives in).
type TrackingRecord struct {
	ID       int64     `json:"id" db:"id"`
	UserID   *int64    `json:"user_id" db:"user_id"`
	EntityID int64     `json:"entity_id"`
	Date     time.Time `json:"date"`
	Cookie   string    `json:"cookie"`
}

// RecordTable describes one tracking table.
type RecordTable struct {
	Name         string // ds_view_record
	EntityColumn string // dataset_id
	DateColumn   string // view_date
	CookieColumn string // view_cookie
	// CookieName is the HTTP cookie carrying the token for this table.
	CookieName string
}

var (
	DatasetViewRecords = RecordTable{
		Name:         "ds_view_record",
		EntityColumn: "dataset_id",
		DateColumn:   "view_date",
		CookieColumn: "view_cookie",
		CookieName:   "view_cookie",
	}
	DatasetDownloadRecords = RecordTable{
		Name:         "ds_download_record",
		EntityColumn: "dataset_id",
		DateColumn:   "download_date",
		CookieColumn: "download_cookie",
		CookieName:   "download_cookie",
	}
	FileViewRecords = RecordTable{
		Name:         "file_view_record",
		EntityColumn: "file_id",
		DateColumn:   "view_date",
		CookieColumn: "view_cookie",
		CookieName:   "file_view_cookie",
	}
	FileDownloadRecords = RecordTable{
		Name:         "file_download_record",
		EntityColumn: "file_id",
		DateColumn:   "download_date",
		CookieColumn: "download_cookie",
		CookieName:   "file_download_cookie",
	}
)
