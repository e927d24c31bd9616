package transaction

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// WeekOf returns the ISO week that contains d.
func WeekOf(d civil.Date) WeekKey {
	year, week := d.In(time.UTC).ISOWeek()
	return WeekKey{Year: year, Week: week}
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// Batch is a contiguous run of one account's records that share an ISO week.
// It is persisted as a single atomic unit.
type Batch struct {
	AccountID string   `json:"account_id"`
	Currency  string   `json:"currency"`
	Week      WeekKey  `json:"week"`
	Records   []Record `json:"-"`
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// IDRange returns the first and last transaction IDs in the batch.
func (b Batch) IDRange() (first, last ID) {
	if len(b.Records) == 0 {
		return "", ""
	}
	return b.Records[0].TransactionID, b.Records[len(b.Records)-1].TransactionID
}
