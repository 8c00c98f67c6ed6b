package accounts

import (
	"fmt"
	"strings"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// CreateAccountInput groups fields required to create an account.
type CreateAccountInput struct {
	OrgID        int64       `json:"-" validate:"required,gt=0"`
	Number       string      `json:"number" validate:"required,max=20"`
	Name         string      `json:"name" validate:"required,max=200"`
	Type         AccountType `json:"type,omitempty"`
	ParentNumber *string     `json:"parent_number,omitempty" validate:"omitempty,max=20"`
	IsSystem     bool        `json:"-"`
}

// Normalize trims fields and derives class/type from the account number.
// The derived class must be a valid PCG class 1-8.
func (in *CreateAccountInput) Normalize() (int, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Name = strings.TrimSpace(in.Name)
	for _, r := range in.Number {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: account number must be numeric", shared.ErrInvalidInput)
		}
	}
	class := ClassOf(in.Number)
	if class == 0 {
		return 0, fmt.Errorf("%w: account number must start with a PCG class digit 1-8", shared.ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = DefaultTypeForClass(class)
	}
	switch in.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
	default:
		return 0, fmt.Errorf("%w: unknown account type %q", shared.ErrInvalidInput, in.Type)
	}
	return class, nil
}
