package transaction

// View is the document form of a record used by snapshots and the read model.
// Dates are YYYY-MM-DD, timestamps are local ISO-8601 without zone.
type View struct {
	TransactionID string   `json:"transaction_id" bson:"transaction_id"`
	AccountID     string   `json:"account_id" bson:"account_id"`
	Date          string   `json:"date" bson:"date"`
	Amount        *float64 `json:"amount" bson:"amount"`
	Category      string   `json:"category" bson:"category"`
	Merchant      string   `json:"merchant" bson:"merchant"`
	Location      string   `json:"location" bson:"location"`
	Type          string   `json:"type" bson:"type"`
	Status        string   `json:"status" bson:"status"`
	Timestamp     string   `json:"timestamp" bson:"timestamp"`
	PaymentMethod string   `json:"payment_method" bson:"payment_method"`
}

// View projects the record into its document form.
func (r Record) View() View {
	amount := r.Amount.Round(2).InexactFloat64()
	v := View{
		TransactionID: r.TransactionID.String(),
		AccountID:     r.AccountID,
		Date:          r.Date.String(),
		Amount:        &amount,
		Category:      r.Category,
		Merchant:      r.Merchant,
		Location:      r.Location,
		Type:          r.Type,
		Status:        string(r.Status),
		PaymentMethod: r.PaymentMethod,
	}
	if !r.Timestamp.IsZero() {
		v.Timestamp = r.Timestamp.Format(TimestampLayout)
	}
	return v
}

// Views projects a slice of records, preserving order.
func Views(records []Record) []View {
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, r.View())
	}
	return views
}
