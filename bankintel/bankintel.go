// Package bankintel defines the bank-transaction classifier interface
// spec.md §1 names as an external collaborator "specified only at its
// interface," plus one illustrative keyword-based implementation, grounded
// on original_source/services/bank_intelligence/category_rules.py.
package bankintel

import "strings"

// Category is a bank-transaction spending/income category.
type Category string

const (
	CategorySalary        Category = "SALARY"
	CategoryInvestment    Category = "INVESTMENT"
	CategoryLoanEMI       Category = "LOAN_EMI"
	CategoryUtility       Category = "UTILITY"
	CategoryTransfer      Category = "TRANSFER"
	CategoryInterest      Category = "INTEREST"
	CategoryUncategorized Category = "UNCATEGORIZED"
)

// Classifier assigns a Category to a bank narration. The heuristics
// themselves are out of scope per spec.md §1; this interface and
// KeywordClassifier are the collaborator the Batch Ingester uses to set
// bank_transactions.category. The Cash Flow service (§4.9) does not use
// it; it keeps its own keyword table.
type Classifier interface {
	Classify(narration string) (Category, error)
}

// keywordRule pairs a narration substring with the category it implies.
type keywordRule struct {
	keyword  string
	category Category
}

// KeywordClassifier is a small reference implementation: first matching
// keyword wins, case-insensitive, grounded on
// original_source/services/bank_intelligence/category_rules.py's ordered
// rule list.
type KeywordClassifier struct {
	rules []keywordRule
}

// NewKeywordClassifier builds a classifier over the default rule set.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: []keywordRule{
		{"salary", CategorySalary},
		{"sal cr", CategorySalary},
		{"zerodha", CategoryInvestment},
		{"mutual fund", CategoryInvestment},
		{"sip", CategoryInvestment},
		{"emi", CategoryLoanEMI},
		{"loan", CategoryLoanEMI},
		{"electricity", CategoryUtility},
		{"broadband", CategoryUtility},
		{"mobile recharge", CategoryUtility},
		{"interest", CategoryInterest},
		{"neft", CategoryTransfer},
		{"imps", CategoryTransfer},
		{"upi", CategoryTransfer},
	}}
}

func (k *KeywordClassifier) Classify(narration string) (Category, error) {
	lower := strings.ToLower(narration)
	for _, r := range k.rules {
		if strings.Contains(lower, r.keyword) {
			return r.category, nil
		}
	}
	return CategoryUncategorized, nil
}

var _ Classifier = (*KeywordClassifier)(nil)
