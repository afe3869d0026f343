package boltstore

import (
	"context"
	"fmt"

	"agora/internal/models"

	bolt "go.etcd.io/bbolt"
)

// CreateReport stores a report. A reporter may report a target only once.
func (s *ForumStore) CreateReport(ctx context.Context, report models.Report) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		byTarget, err := mustBucket(tx, BucketReportsByTarget)
		if err != nil {
			return err
		}
		indexKey := compositeKey(report.Target.Key(), report.ReporterID)
		if byTarget.Get(indexKey) != nil {
			return fmt.Errorf("already reported %s: %w", report.Target.Key(), models.ErrConflict)
		}

		reports, err := mustBucket(tx, BucketReports)
		if err != nil {
			return err
		}
		if err := putJSON(reports, []byte(report.ID), report); err != nil {
			return err
		}
		return byTarget.Put(indexKey, []byte(report.ID))
	})
	return models.NewStorageError("create report", err)
}

// HasReported reports whether reporterID already reported target.
func (s *ForumStore) HasReported(ctx context.Context, reporterID string, target models.Target) (bool, error) {
	var exists bool

	err := s.db.View(func(tx *bolt.Tx) error {
		byTarget, err := mustBucket(tx, BucketReportsByTarget)
		if err != nil {
			return err
		}
		exists = byTarget.Get(compositeKey(target.Key(), reporterID)) != nil
		return nil
	})

	return exists, models.NewStorageError("has reported", err)
}

// ListReportsForTarget returns every report filed against target.
func (s *ForumStore) ListReportsForTarget(ctx context.Context, target models.Target) ([]models.Report, error) {
	var reports []models.Report

	err := s.db.View(func(tx *bolt.Tx) error {
		byTarget, err := mustBucket(tx, BucketReportsByTarget)
		if err != nil {
			return err
		}
		bucket, err := mustBucket(tx, BucketReports)
		if err != nil {
			return err
		}
		return scanPrefix(byTarget, prefixOf(target.Key()), func(_, reportID []byte) error {
			var report models.Report
			found, err := getJSON(bucket, reportID, &report)
			if err != nil {
				return err
			}
			if found {
				reports = append(reports, report)
			}
			return nil
		})
	})

	return reports, models.NewStorageError("list reports", err)
}
