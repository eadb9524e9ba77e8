// Package cronjobs schedules report ingestion and incremental cluster
// maintenance.
package cronjobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go-aduan/aggregate"
	"go-aduan/detection"
	"go-aduan/metrics"
	"go-aduan/summarization"
	"go-aduan/types"
)

const jobTimeout = 5 * time.Minute

// Store is the persistence the jobs need. db.FirestoreStore implements it.
type Store interface {
	SaveReports(ctx context.Context, reports []types.Report) (int, error)
	UnclusteredReports(ctx context.Context) ([]types.Report, error)
	ReportsByIDs(ctx context.Context, ids []string) ([]types.Report, error)
	AssignReports(ctx context.Context, assignments map[string]string) error
	SaveClusters(ctx context.Context, clusters []types.Cluster) error
	ActiveClusters(ctx context.Context) ([]types.Cluster, error)
}

// ReportSource is implemented by intake.BlueskySource.
type ReportSource interface {
	Reports(ctx context.Context, feedURI string) ([]types.Report, error)
}

// Enricher is implemented by intake.Enricher.
type Enricher interface {
	Enrich(ctx context.Context, reports []types.Report) ([]types.Report, error)
}

// Summarizer is implemented by summarization.Summarizer.
type Summarizer interface {
	GenerateSummaries(ctx context.Context, clusters []types.Cluster, reports summarization.ReportLookup)
}

// Jobs holds the collaborators of the scheduled jobs. Source, Enricher and
// Summarizer are optional.
type Jobs struct {
	Store      Store
	Engine     *detection.Engine
	Source     ReportSource
	Enricher   Enricher
	Summarizer Summarizer
	FeedURIs   []string
}

// RunIngestion pulls every configured feed, enriches the new reports and
// stores them unclustered.
func (j *Jobs) RunIngestion(ctx context.Context) error {
	if j.Source == nil {
		return nil
	}

	total := 0
	for _, uri := range j.FeedURIs {
		reports, err := j.Source.Reports(ctx, uri)
		if err != nil {
			log.Printf("CronJob: Error fetching feed %s: %v", uri, err)
			continue
		}
		if len(reports) == 0 {
			continue
		}

		if j.Enricher != nil {
			reports, err = j.Enricher.Enrich(ctx, reports)
			if err != nil {
				return fmt.Errorf("enrich reports from %s: %w", uri, err)
			}
		}

		saved, err := j.Store.SaveReports(ctx, reports)
		if err != nil {
			return fmt.Errorf("save reports from %s: %w", uri, err)
		}
		total += saved
	}
	log.Printf("CronJob: Ingestion stored %d new reports from %d feeds", total, len(j.FeedURIs))
	return nil
}

// RunMaintenance feeds every unclustered report through the engine's
// incremental update and persists the clusters it changed or created.
func (j *Jobs) RunMaintenance(ctx context.Context) (*types.UpdateResult, error) {
	clusters, err := j.Store.ActiveClusters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active clusters: %w", err)
	}

	var memberIDs []string
	for _, c := range clusters {
		memberIDs = append(memberIDs, c.ReportIDs...)
	}
	members, err := j.Store.ReportsByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("load cluster members: %w", err)
	}
	store := detection.NewReportStore(members...)
	pruned := pruneMissing(clusters, store, j.Engine.Config().MinSubmissions, j.Engine.Now())

	// Archive dissolved clusters before their members go back to the pool.
	if len(pruned.dissolved) > 0 {
		if err := j.Store.SaveClusters(ctx, pruned.dissolved); err != nil {
			return nil, fmt.Errorf("archive dissolved clusters: %w", err)
		}
		release := make(map[string]string, len(pruned.released))
		for _, id := range pruned.released {
			release[id] = ""
		}
		if err := j.Store.AssignReports(ctx, release); err != nil {
			return nil, fmt.Errorf("release members: %w", err)
		}
		log.Printf("CronJob: Archived %d clusters below the minimum size, released %d reports",
			len(pruned.dissolved), len(pruned.released))
	}

	pending, err := j.Store.UnclusteredReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unclustered reports: %w", err)
	}

	res, err := j.Engine.UpdateClusters(ctx, pruned.clusters, store, pending)
	if err != nil {
		return nil, err
	}

	changed := make(map[string]bool, len(res.ChangedClusterIDs))
	for _, id := range res.ChangedClusterIDs {
		changed[id] = true
	}
	for _, c := range pruned.clusters {
		if pruned.repaired[c.ID] && !changed[c.ID] {
			changed[c.ID] = true
			res.ChangedClusterIDs = append(res.ChangedClusterIDs, c.ID)
		}
	}
	var toSave []types.Cluster
	for _, c := range res.UpdatedClusters {
		if changed[c.ID] {
			toSave = append(toSave, c)
		}
	}
	toSave = append(toSave, res.NewClusters...)
	metrics.ActiveClusters.Set(float64(len(res.UpdatedClusters) + len(res.NewClusters)))

	if len(toSave) == 0 {
		log.Printf("CronJob: Maintenance found nothing to update (%d orphaned)", len(res.Orphaned))
		return res, nil
	}

	if j.Summarizer != nil {
		lookup := store.Clone()
		for _, r := range pending {
			lookup.Add(r)
		}
		j.Summarizer.GenerateSummaries(ctx, toSave, lookup)
	}

	if err := j.Store.SaveClusters(ctx, toSave); err != nil {
		return nil, fmt.Errorf("save clusters: %w", err)
	}

	assignments := make(map[string]string)
	for _, c := range toSave {
		for _, id := range c.ReportIDs {
			assignments[id] = c.ID
		}
	}
	if err := j.Store.AssignReports(ctx, assignments); err != nil {
		return nil, fmt.Errorf("assign reports: %w", err)
	}

	log.Printf("CronJob: Maintenance saved %d clusters, %d reports still orphaned", len(toSave), len(res.Orphaned))
	return res, nil
}

type pruneResult struct {
	clusters  []types.Cluster // still active, input order
	repaired  map[string]bool
	dissolved []types.Cluster // archived, no members
	released  []string
}

// pruneMissing drops member ids whose report no longer exists. A cluster that
// lost members is rebuilt from the rest, or archived when fewer than minSize
// remain; the members of an archived cluster are released.
func pruneMissing(clusters []types.Cluster, store *detection.ReportStore, minSize int, now time.Time) pruneResult {
	res := pruneResult{
		clusters: make([]types.Cluster, 0, len(clusters)),
		repaired: make(map[string]bool),
	}
	for _, c := range clusters {
		var kept []types.Report
		for _, id := range c.ReportIDs {
			if r, ok := store.Get(id); ok {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(c.ReportIDs) {
			res.clusters = append(res.clusters, c)
			continue
		}
		log.Printf("CronJob: Warning: cluster %s lost %d missing members", c.ID, len(c.ReportIDs)-len(kept))

		if len(kept) > 0 && len(kept) >= minSize {
			res.clusters = append(res.clusters, aggregate.Rebuild(c, kept, now))
			res.repaired[c.ID] = true
			continue
		}

		c = c.Clone()
		c.Status = types.Archived
		c.ReportIDs = []string{}
		c.Metrics.ReportCount = 0
		c.UpdatedAt = now
		res.dissolved = append(res.dissolved, c)
		for _, r := range kept {
			res.released = append(res.released, r.ID)
		}
	}
	return res
}

// InitCronJobs schedules ingestion and maintenance and starts the scheduler.
func InitCronJobs(jobs *Jobs, ingestSchedule, maintenanceSchedule string) (*cron.Cron, error) {
	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	_, err := c.AddFunc(ingestSchedule, func() {
		log.Println("\nCronJob: Ingestion Running")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		err := jobs.RunIngestion(ctx)
		if err != nil {
			log.Printf("CronJob: Ingestion failed: %v", err)
		}
		metrics.RecordJob("ingestion", err)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling ingestion: %w", err)
	}

	_, err = c.AddFunc(maintenanceSchedule, func() {
		log.Println("\nCronJob: Maintenance Running")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_, err := jobs.RunMaintenance(ctx)
		if err != nil {
			log.Printf("CronJob: Maintenance failed: %v", err)
		}
		metrics.RecordJob("maintenance", err)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling maintenance: %w", err)
	}

	c.Start()
	return c, nil
}
