package accounts

import "time"

// AccountType enumerates chart-of-accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Account models a Plan Comptable Général node. Class is derivable from the
// first digit of Number but stored redundantly for query performance.
type Account struct {
	ID           int64
	OrgID        int64
	Number       string
	Name         string
	Class        int
	Type         AccountType
	ParentNumber *string
	IsSystem     bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// classLabels holds the French PCG class labels, indexed by class 1-8.
var classLabels = map[int]string{
	1: "Capitaux",
	2: "Immobilisations",
	3: "Stocks",
	4: "Tiers",
	5: "Financier",
	6: "Charges",
	7: "Produits",
	8: "Comptes spéciaux",
}

// ClassLabel returns the French PCG label for a class, or empty when unknown.
func ClassLabel(class int) string {
	return classLabels[class]
}

// ClassOf derives the PCG class from the first digit of an account number.
// It returns 0 for malformed numbers.
func ClassOf(number string) int {
	if number == "" {
		return 0
	}
	c := int(number[0] - '0')
	if c < 1 || c > 8 {
		return 0
	}
	return c
}

// DefaultTypeForClass maps a PCG class to its conventional account type.
// Class 4 (tiers) defaults to asset; receivable vs payable accounts override
// the type explicitly on creation.
func DefaultTypeForClass(class int) AccountType {
	switch class {
	case 1:
		return AccountTypeEquity
	case 2, 3, 5:
		return AccountTypeAsset
	case 4:
		return AccountTypeAsset
	case 6:
		return AccountTypeExpense
	case 7:
		return AccountTypeIncome
	default:
		return AccountTypeAsset
	}
}
