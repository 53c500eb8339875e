package types

// Batch is the outcome of one incremental fetch. Records holds the
// measurements that survived cleanup, Dropped counts the rows that did not,
// and Last is the cursor value of the final row scanned.
type Batch struct {
	Records []Measurement `json:"records"`
	Dropped int64         `json:"dropped"`
	Last    int64         `json:"last"`
}

// Size returns the number of source rows the batch was built from.
func (b *Batch) Size() int64 {
	return int64(len(b.Records)) + b.Dropped
}
