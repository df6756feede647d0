package valueobject

import "fmt"

// SourceDocType identifies the kind of source document a posting request
// originates from.
type SourceDocType string

const (
	DocARInvoice        SourceDocType = "AR_INVOICE"
	DocARPayment        SourceDocType = "AR_PAYMENT"
	DocARCreditMemo     SourceDocType = "AR_CREDIT_MEMO"
	DocARAdjustment     SourceDocType = "AR_ADJUSTMENT"
	DocAPBill           SourceDocType = "AP_BILL"
	DocAPPayment        SourceDocType = "AP_PAYMENT"
	DocInventoryReceipt SourceDocType = "INVENTORY_RECEIPT"
	DocInventoryIssue   SourceDocType = "INVENTORY_ISSUE"
	DocPayrollRun       SourceDocType = "PAYROLL_RUN"
)

var validDocTypes = map[SourceDocType]struct{}{
	DocARInvoice:        {},
	DocARPayment:        {},
	DocARCreditMemo:     {},
	DocARAdjustment:     {},
	DocAPBill:           {},
	DocAPPayment:        {},
	DocInventoryReceipt: {},
	DocInventoryIssue:   {},
	DocPayrollRun:       {},
}

// NewSourceDocType validates a document type string.
func NewSourceDocType(s string) (SourceDocType, error) {
	dt := SourceDocType(s)
	if _, ok := validDocTypes[dt]; !ok {
		return "", fmt.Errorf("unknown source document type %q", s)
	}
	return dt, nil
}

func (d SourceDocType) String() string { return string(d) }
