package service

import (
	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/valueobject"
	"github.com/finbooks/finbooks/pkg/fault"
	"github.com/finbooks/finbooks/pkg/money"
)

// LineInput is one raw posting line as received on the wire: decimal amount
// strings, not yet scaled to minor units.
type LineInput struct {
	AccountRef string
	Debit      string
	Credit     string
	Memo       string
}

// PostingValidator is a domain service that turns raw posting input into
// validated journal lines. All failures are Validation faults; nothing here
// touches storage.
type PostingValidator struct{}

func NewPostingValidator() *PostingValidator {
	return &PostingValidator{}
}

// BuildLines parses and scales the raw lines, then enforces the balanced-entry
// invariant on the result. Amount strings are parsed as exact decimals and
// scaled to minor units with banker's rounding. An empty amount string means
// zero for that side.
func (v *PostingValidator) BuildLines(currency string, inputs []LineInput) ([]model.JournalLine, error) {
	if _, err := money.NewCurrency(currency); err != nil {
		return nil, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "invalid currency")
	}

	lines := make([]model.JournalLine, 0, len(inputs))
	for i, in := range inputs {
		if _, err := valueobject.NewAccountCode(in.AccountRef); err != nil {
			return nil, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "line %d", i+1)
		}
		debit, err := v.scale(in.Debit)
		if err != nil {
			return nil, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "line %d: debit", i+1)
		}
		credit, err := v.scale(in.Credit)
		if err != nil {
			return nil, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "line %d: credit", i+1)
		}
		lines = append(lines, model.JournalLine{
			AccountRef:  in.AccountRef,
			DebitMinor:  debit,
			CreditMinor: credit,
			Memo:        in.Memo,
		})
	}

	if err := model.ValidateLines(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (v *PostingValidator) scale(amount string) (int64, error) {
	if amount == "" {
		return 0, nil
	}
	d, err := money.ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	return money.ToMinorUnits(d)
}
