package enum

type ReceiptStatus string

const (
	ReceiptStatusProcessed ReceiptStatus = "processed"
	ReceiptStatusFailed    ReceiptStatus = "failed"
)

func (e ReceiptStatus) String() string {
	return string(e)
}
