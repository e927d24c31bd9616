package transaction

import "cloud.google.com/go/civil"

// WeekBatcher buffers one account's records and cuts a Batch whenever the
// calendar crosses into a new ISO week. It is not safe for concurrent use.
type WeekBatcher struct {
	accountID string
	currency  string
	week      WeekKey
	started   bool
	records   []Record
}

func NewWeekBatcher(accountID, currency string) *WeekBatcher {
	return &WeekBatcher{accountID: accountID, currency: currency}
}

// Observe is called once per day before that day's records are added. When
// day starts a new ISO week the buffered records are returned as a batch;
// ok is false when there is nothing to flush.
func (b *WeekBatcher) Observe(day civil.Date) (batch Batch, ok bool) {
	week := WeekOf(day)
	if !b.started {
		b.started = true
		b.week = week
		return Batch{}, false
	}
	if week == b.week {
		return Batch{}, false
	}
	batch, ok = b.Drain()
	b.week = week
	return batch, ok
}

// Add buffers a record under the current week
func (b *WeekBatcher) Add(record Record) {
	if !b.started {
		b.started = true
		b.week = WeekOf(record.Date)
	}
	b.records = append(b.records, record)
}

// Pending returns the number of buffered records
func (b *WeekBatcher) Pending() int {
	return len(b.records)
}

// Drain returns whatever is buffered as the final batch of the current week.
func (b *WeekBatcher) Drain() (Batch, bool) {
	if len(b.records) == 0 {
		return Batch{}, false
	}
	batch := Batch{
		AccountID: b.accountID,
		Currency:  b.currency,
		Week:      b.week,
		Records:   b.records,
	}
	b.records = nil
	return batch, true
}
