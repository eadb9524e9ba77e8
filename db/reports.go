package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"go-aduan/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SaveReports creates report documents with a BulkWriter, using Report.ID as
// the document ID. Reports that already exist are left untouched so a repeated
// ingest never resets their cluster assignment. It returns how many were new.
func SaveReports(ctx context.Context, client *firestore.Client, reports []types.Report) (int, error) {
	if len(reports) == 0 {
		log.Println("No reports to save.")
		return 0, nil
	}

	bw := client.BulkWriter(ctx)
	col := client.Collection(reportsCollection)

	var jobs []*firestore.BulkWriterJob
	for _, r := range reports {
		if r.ID == "" {
			log.Printf("Warning: Skipping report with empty ID from %s", r.Source)
			continue
		}
		job, err := bw.Create(col.Doc(r.ID), r)
		if err != nil {
			log.Printf("Error enqueueing report %s for save: %v", r.ID, err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	created := 0
	for _, job := range jobs {
		_, err := job.Results()
		switch {
		case err == nil:
			created++
		case status.Code(err) == codes.AlreadyExists:
			continue
		default:
			return created, fmt.Errorf("error saving reports: %w", err)
		}
	}
	log.Printf("Saved %d new reports to '%s' (%d already existed).", created, reportsCollection, len(jobs)-created)
	return created, nil
}

// GetUnclusteredReports returns every report that no cluster has claimed yet.
func GetUnclusteredReports(ctx context.Context, client *firestore.Client) ([]types.Report, error) {
	iter := client.Collection(reportsCollection).
		Where("clusterId", "==", "").
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var reports []types.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating reports collection: %w", err)
		}

		var r types.Report
		if err := doc.DataTo(&r); err != nil {
			log.Printf("Warning: Error converting document %s to Report: %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		r.ID = doc.Ref.ID
		reports = append(reports, r)
	}
	return reports, nil
}

// GetReportsByIDs loads the given reports. Missing documents are skipped.
func GetReportsByIDs(ctx context.Context, client *firestore.Client, ids []string) ([]types.Report, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	col := client.Collection(reportsCollection)
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = col.Doc(id)
	}

	snaps, err := client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("error getting %d reports: %w", len(ids), err)
	}

	reports := make([]types.Report, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			log.Printf("Warning: report %s does not exist", snap.Ref.ID)
			continue
		}
		var r types.Report
		if err := snap.DataTo(&r); err != nil {
			return nil, fmt.Errorf("error converting document %s to Report: %w", snap.Ref.ID, err)
		}
		r.ID = snap.Ref.ID
		reports = append(reports, r)
	}
	return reports, nil
}

// AssignReports sets clusterId on each report, keyed by report ID.
func AssignReports(ctx context.Context, client *firestore.Client, assignments map[string]string) error {
	if len(assignments) == 0 {
		return nil
	}

	bw := client.BulkWriter(ctx)
	col := client.Collection(reportsCollection)

	var jobs []*firestore.BulkWriterJob
	for reportID, clusterID := range assignments {
		job, err := bw.Update(col.Doc(reportID), []firestore.Update{{Path: "clusterId", Value: clusterID}})
		if err != nil {
			log.Printf("Error enqueueing cluster assignment for report %s: %v", reportID, err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	if err := firstJobError(jobs); err != nil {
		return fmt.Errorf("error assigning reports: %w", err)
	}
	return nil
}

func firstJobError(jobs []*firestore.BulkWriterJob) error {
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}
