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

// SaveClusters saves clusters to the 'clusters' collection using BulkWriter.
// It uses Cluster.ID as the Firestore document ID.
func SaveClusters(ctx context.Context, client *firestore.Client, clusters []types.Cluster) error {
	if len(clusters) == 0 {
		log.Println("No clusters to save.")
		return nil
	}

	bw := client.BulkWriter(ctx)
	col := client.Collection(clustersCollection)

	log.Printf("Preparing to save %d clusters to '%s'...", len(clusters), clustersCollection)

	var jobs []*firestore.BulkWriterJob
	for _, c := range clusters {
		if c.ID == "" {
			log.Printf("Warning: Skipping cluster with empty ID: %s", c.Name)
			continue
		}
		job, err := bw.Set(col.Doc(c.ID), c)
		if err != nil {
			log.Printf("Error enqueueing cluster %s for save: %v", c.ID, err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	if err := firstJobError(jobs); err != nil {
		return fmt.Errorf("error saving clusters: %w", err)
	}
	log.Printf("Saved %d clusters.", len(jobs))
	return nil
}

// GetActiveClusters returns active clusters ordered by creation time, so
// maintenance sees them in a stable order.
func GetActiveClusters(ctx context.Context, client *firestore.Client) ([]types.Cluster, error) {
	iter := client.Collection(clustersCollection).
		Where("status", "==", string(types.Active)).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var clusters []types.Cluster
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating clusters collection: %w", err)
		}

		var c types.Cluster
		if err := doc.DataTo(&c); err != nil {
			log.Printf("Warning: Error converting document %s to Cluster: %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		c.ID = doc.Ref.ID
		clusters = append(clusters, c)
	}
	log.Printf("Retrieved %d active clusters from the database.", len(clusters))
	return clusters, nil
}

// GetClusterByID retrieves a single cluster. A missing document yields ErrNotFound.
func GetClusterByID(ctx context.Context, client *firestore.Client, clusterID string) (types.Cluster, error) {
	var c types.Cluster

	snap, err := client.Collection(clustersCollection).Doc(clusterID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return c, fmt.Errorf("cluster %s: %w", clusterID, ErrNotFound)
		}
		return c, fmt.Errorf("error getting cluster %s: %w", clusterID, err)
	}

	if err := snap.DataTo(&c); err != nil {
		return c, fmt.Errorf("error converting document %s to Cluster: %w", clusterID, err)
	}
	c.ID = snap.Ref.ID
	return c, nil
}
