package market

const (
	TopicOrderFulfilled = "market.order.fulfilled"
	TopicOrderRejected  = "market.order.rejected"
	TopicPaymentApplied = "market.payment.applied"
)

// Partition key = invoice_id supaya semua event 1 invoice maintain urutan.
func PartitionKey(id string) []byte { return []byte(id) }
