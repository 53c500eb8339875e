package driver

import (
	"context"
	"fmt"

	"github.com/linka-aq/linka-proxy/pkg/jdbc"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/linka-aq/linka-proxy/utils/typeutils"
)

// FetchIncremental reads the rows past the cursor position in one bounded,
// ordered scan and runs cleanup on each. The returned batch carries the
// surviving measurements, the dropped count, and the cursor value of the
// last row scanned whether or not that row survived cleanup.
func (f *Fiuna) FetchIncremental(ctx context.Context, since, limit int64) (*types.Batch, error) {
	stream := f.Stream()
	query := jdbc.BuildIncrementalQuery(stream)
	logger.Debugf("running incremental query[%s] with cursor %d and limit %d", query, since, limit)

	rows, err := f.client.QueryxContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute incremental query: %s", err)
	}
	defer rows.Close()

	batch := &types.Batch{Last: since}
	for rows.Next() {
		record := make(types.Record)
		if err := jdbc.MapScan(rows, record); err != nil {
			return nil, fmt.Errorf("failed to scan record: %s", err)
		}

		cursor, err := typeutils.ReformatInt64(record[stream.CursorField])
		if err != nil {
			return nil, fmt.Errorf("failed to read cursor field[%s]: %s", stream.CursorField, err)
		}
		if typeutils.Compare(cursor, batch.Last) > 0 {
			batch.Last = cursor
		}

		measurement, err := types.MeasurementFromRecord(record)
		if err != nil {
			logger.Debugf("dropping row at cursor %d: %s", cursor, err)
			batch.Dropped++
			continue
		}
		batch.Records = append(batch.Records, *measurement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %s", err)
	}

	return batch, nil
}
