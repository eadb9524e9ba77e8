package similarity

import (
	"context"
	"runtime"

	"go-aduan/types"
	"golang.org/x/sync/errgroup"
)

// Matrix builds the symmetric pairwise similarity matrix of reports. Rows are
// scored in parallel; the worker for row i writes only cells (i,j) and (j,i)
// with j > i, so workers never share a cell. The diagonal is 1.
func Matrix(ctx context.Context, reports []types.Report, cfg types.ClusteringConfig) ([][]float64, error) {
	n := len(reports)
	matrix := make([][]float64, n)
	if n == 0 {
		return matrix, nil
	}
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}

	docs := make([]prepared, n)
	for i, r := range reports {
		docs[i] = prepare(r)
	}
	weights := cfg.Weights()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n-1; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = types.Recovered("similarity matrix", r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < n; j++ {
				v := score(docs[i], docs[j], cfg, weights).Overall
				matrix[i][j] = v
				matrix[j][i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// cancellation after the last row started still fails the whole build
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}
