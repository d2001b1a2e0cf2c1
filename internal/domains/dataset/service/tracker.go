package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/repository"
	"datahub-backend/pkg/logger"
)

// RecordTracker deduplicates view/download events per (entity, client token).
type RecordTracker struct {
	records repository.RecordRepository
	table   model.RecordTable
}

func NewRecordTracker(records repository.RecordRepository, table model.RecordTable) *RecordTracker {
	return &RecordTracker{
		records: records,
		table:   table,
	}
}

// CookieName is the cookie the token travels in.
func (t *RecordTracker) CookieName() string {
	return t.table.CookieName
}

func (t *RecordTracker) RecordExists(ctx context.Context, entityID int64, token string) (bool, error) {
	return t.records.Exists(ctx, entityID, token)
}

// CreateRecord stores a record for the token. A concurrent insert of the same
// token is absorbed by the unique constraint and reported as the existing row.
func (t *RecordTracker) CreateRecord(ctx context.Context, entityID int64, userID *int64, token string) (*model.TrackingRecord, error) {
	record := &model.TrackingRecord{
		UserID:   userID,
		EntityID: entityID,
		Date:     time.Now(),
		Cookie:   token,
	}

	created, err := t.records.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if !created {
		logger.Debug("Tracking record already present for " + t.table.Name)
	}
	return record, nil
}

// maxTokenLength is the width of the *_cookie columns.
const maxTokenLength = 36

// ResolveOrIssueToken returns the token to store in the client cookie and
// records the event at most once per token. An explicit token is kept; UUIDs
// in any accepted spelling are stored canonically. A fresh UUIDv4 is issued
// only when the token is absent or cannot fit the column.
func (t *RecordTracker) ResolveOrIssueToken(ctx context.Context, entityID int64, userID *int64, incomingToken string) (string, error) {
	token := normalizeToken(incomingToken)

	exists, err := t.RecordExists(ctx, entityID, token)
	if err != nil {
		return "", err
	}
	if !exists {
		if _, err := t.CreateRecord(ctx, entityID, userID, token); err != nil {
			return "", err
		}
	}
	return token, nil
}

func normalizeToken(incoming string) string {
	if u, err := uuid.Parse(incoming); err == nil {
		return u.String()
	}
	if incoming == "" || len(incoming) > maxTokenLength {
		return uuid.NewString()
	}
	return incoming
}
