package mlflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/databricks/databricks-sdk-go/service/ml"
)

// maxParamsPerBatch is the tracking server's limit on params in one log-batch call.
const maxParamsPerBatch = 100

// LogParamsFromMap logs params on runID in key order, batching requests.
func (c *Client) LogParamsFromMap(ctx context.Context, runID string, params map[string]string) error {
	for _, batch := range paramBatches(params, maxParamsPerBatch) {
		err := c.client.Experiments.LogBatch(ctx, ml.LogBatch{
			RunId:  runID,
			Params: batch,
		})
		if err != nil {
			return fmt.Errorf("failed to log %d parameters: %w", len(batch), err)
		}
	}
	return nil
}

func paramBatches(params map[string]string, size int) [][]ml.Param {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var batches [][]ml.Param
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		batch := make([]ml.Param, 0, end-start)
		for _, key := range keys[start:end] {
			batch = append(batch, ml.Param{Key: key, Value: params[key]})
		}
		batches = append(batches, batch)
	}
	return batches
}
