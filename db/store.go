package db

import (
	"context"

	"cloud.google.com/go/firestore"
	"go-aduan/types"
)

// FirestoreStore adapts the package functions to a single client so jobs and
// handlers can depend on an interface.
type FirestoreStore struct {
	Client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{Client: client}
}

func (s *FirestoreStore) SaveReports(ctx context.Context, reports []types.Report) (int, error) {
	return SaveReports(ctx, s.Client, reports)
}

func (s *FirestoreStore) UnclusteredReports(ctx context.Context) ([]types.Report, error) {
	return GetUnclusteredReports(ctx, s.Client)
}

func (s *FirestoreStore) ReportsByIDs(ctx context.Context, ids []string) ([]types.Report, error) {
	return GetReportsByIDs(ctx, s.Client, ids)
}

func (s *FirestoreStore) AssignReports(ctx context.Context, assignments map[string]string) error {
	return AssignReports(ctx, s.Client, assignments)
}

func (s *FirestoreStore) SaveClusters(ctx context.Context, clusters []types.Cluster) error {
	return SaveClusters(ctx, s.Client, clusters)
}

func (s *FirestoreStore) ActiveClusters(ctx context.Context) ([]types.Cluster, error) {
	return GetActiveClusters(ctx, s.Client)
}

func (s *FirestoreStore) Cluster(ctx context.Context, id string) (types.Cluster, error) {
	return GetClusterByID(ctx, s.Client, id)
}
