package reports

import (
	"banking_system/internal/domain" // Domain models and errors
	"cmp"                            // Comparator helpers
	"context"                        // Request context
	"errors"                         // Error inspection
	"fmt"                            // Error wrapping
	"slices"                         // Stable sorting
	"strings"                        // String manipulation

	"github.com/shopspring/decimal" // Decimal money
	"gorm.io/gorm"                  // GORM ORM library
)

// AccountOwner is one owner of a business or savings account.
type AccountOwner struct {
	CustomerID int     `json:"customerID"`
	Type       *string `json:"type"`
	AccNumber  int     `json:"accNumber"`
	Balance    *string `json:"balance"`
}

// BusinessSavingsOwners lists every (owner, account) pair of BUS and SAV
// accounts, by owner, account type and account number.
func (e *Engine) BusinessSavingsOwners(ctx context.Context) ([]AccountOwner, error) {
	var accounts []domain.Account
	err := e.db.WithContext(ctx).
		Preload("Owns", byColumn("customer_id")).
		Where("type IN ?", []string{"BUS", "SAV"}).
		Order("acc_number").
		Find(&accounts).Error
	if err != nil {
		return nil, storeErr(err)
	}

	var rows []AccountOwner
	for _, a := range accounts {
		for _, o := range a.Owns {
			rows = append(rows, AccountOwner{
				CustomerID: o.CustomerID,
				Type:       a.Type,
				AccNumber:  a.AccNumber,
				Balance:    domain.NullMoney(a.Balance),
			})
		}
	}
	slices.SortStableFunc(rows, func(a, b AccountOwner) int {
		return cmp.Or(
			cmp.Compare(a.CustomerID, b.CustomerID),
			strings.Compare(str(a.Type), str(b.Type)),
			cmp.Compare(a.AccNumber, b.AccNumber),
		)
	})
	return top(rows), nil
}

// BranchAccount is an account with its branch name.
type BranchAccount struct {
	BranchName *string `json:"branchName"`
	AccNumber  int     `json:"accNumber"`
	Balance    *string `json:"balance"`
}

// EdwardsBranchAccounts lists the accounts over 100000 at the branch
// managed by Phillip Edwards. It fails with ErrNotFound when he manages no
// branch.
func (e *Engine) EdwardsBranchAccounts(ctx context.Context) ([]BranchAccount, error) {
	db := e.db.WithContext(ctx)

	var branch domain.Branch
	err := db.Model(&domain.Branch{}).
		Select("branch.*").
		Joins("JOIN employee ON employee.sin = branch.manager_sin").
		Where("employee.first_name = ? AND employee.last_name = ?", "Phillip", "Edwards").
		Order("branch.branch_number").
		Take(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no branch managed by Phillip Edwards", domain.ErrNotFound)
	}
	if err != nil {
		return nil, storeErr(err)
	}

	var accounts []domain.Account
	err = db.Where("branch_number = ? AND balance > ?", branch.BranchNumber, 100000).
		Order("acc_number").
		Limit(Limit).
		Find(&accounts).Error
	if err != nil {
		return nil, storeErr(err)
	}

	rows := make([]BranchAccount, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, BranchAccount{BranchName: branch.BranchName, AccNumber: a.AccNumber, Balance: domain.NullMoney(a.Balance)})
	}
	return rows, nil
}

// accountsWithLedger loads accounts, optionally scoped, with their ledger
// entries in sequence order.
func (e *Engine) accountsWithLedger(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Account, error) {
	var accounts []domain.Account
	q := e.db.WithContext(ctx).
		Preload("Transactions", byColumn("trans_number")).
		Order("acc_number")
	if scope != nil {
		q = q.Scopes(scope)
	}
	if err := q.Find(&accounts).Error; err != nil {
		return nil, storeErr(err)
	}
	return accounts, nil
}

func ledgerSum(txs []domain.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(domain.OrZero(t.Amount))
	}
	return sum
}

// BusyAccount is an account with the sum of its ledger.
type BusyAccount struct {
	AccNumber int     `json:"accNumber"`
	Balance   *string `json:"balance"`
	TxnSum    string  `json:"txnSum"`
}

// BerlinBusyAccounts lists Berlin accounts with at least ten ledger entries,
// lowest ledger sum first.
func (e *Engine) BerlinBusyAccounts(ctx context.Context) ([]BusyAccount, error) {
	berlin, err := e.branchNamed(ctx, "Berlin")
	if err != nil {
		return nil, err
	}
	if len(berlin) == 0 {
		return []BusyAccount{}, nil
	}
	accounts, err := e.accountsWithLedger(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("branch_number IN ?", berlin)
	})
	if err != nil {
		return nil, err
	}

	type busy struct {
		acc domain.Account
		sum decimal.Decimal
	}
	var found []busy
	for _, a := range accounts {
		if len(a.Transactions) >= 10 {
			found = append(found, busy{a, ledgerSum(a.Transactions)})
		}
	}
	slices.SortStableFunc(found, func(a, b busy) int { return a.sum.Cmp(b.sum) })

	found = top(found)
	rows := make([]BusyAccount, 0, len(found))
	for _, f := range found {
		rows = append(rows, BusyAccount{AccNumber: f.acc.AccNumber, Balance: domain.NullMoney(f.acc.Balance), TxnSum: domain.Money(f.sum)})
	}
	return rows, nil
}

// TypeAverage is the average ledger amount of one account type at a branch.
type TypeAverage struct {
	BranchName  *string `json:"branchName"`
	AccountType *string `json:"accountType"`
	AvgTxn      string  `json:"avgTxn"`
}

// LargeBranchTypeAverages groups the accounts of branches holding at least
// 50 accounts by account type and reports each group's average ledger
// amount, by branch name then type.
func (e *Engine) LargeBranchTypeAverages(ctx context.Context) ([]TypeAverage, error) {
	var branches []domain.Branch
	if err := e.db.WithContext(ctx).Order("branch_number").Find(&branches).Error; err != nil {
		return nil, storeErr(err)
	}
	accounts, err := e.accountsWithLedger(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("branch_number IS NOT NULL")
	})
	if err != nil {
		return nil, err
	}

	counts := map[int]int{}
	for _, a := range accounts {
		counts[*a.BranchNumber]++
	}
	names := map[int]*string{}
	for _, b := range branches {
		if counts[b.BranchNumber] >= 50 {
			names[b.BranchNumber] = b.BranchName
		}
	}

	type key struct {
		branch int
		typ    string
	}
	type group struct {
		branch int
		typ    *string
		sum    decimal.Decimal
		n      int
	}
	index := map[key]*group{}
	var groups []*group
	for _, a := range accounts {
		if _, big := names[*a.BranchNumber]; !big {
			continue
		}
		k := key{*a.BranchNumber, str(a.Type)}
		g, ok := index[k]
		if !ok {
			g = &group{branch: k.branch, typ: a.Type}
			index[k] = g
			groups = append(groups, g)
		}
		for _, t := range a.Transactions {
			g.sum = g.sum.Add(domain.OrZero(t.Amount))
			g.n++
		}
	}

	rows := make([]TypeAverage, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, TypeAverage{BranchName: names[g.branch], AccountType: g.typ, AvgTxn: domain.Money(average(g.sum, g.n))})
	}
	slices.SortStableFunc(rows, func(a, b TypeAverage) int {
		return cmp.Or(strings.Compare(str(a.BranchName), str(b.BranchName)), strings.Compare(str(a.AccountType), str(b.AccountType)))
	})
	return top(rows), nil
}

// LedgerLine is one ledger entry with its account type.
type LedgerLine struct {
	AccountType *string `json:"accountType"`
	AccNumber   int     `json:"accNumber"`
	TransNumber int     `json:"transNumber"`
	Amount      *string `json:"amount"`
}

// OutlierAccountTransactions lists the ledger entries of accounts whose
// average ledger amount exceeds three times the average for their account
// type, by type, account and sequence number.
func (e *Engine) OutlierAccountTransactions(ctx context.Context) ([]LedgerLine, error) {
	accounts, err := e.accountsWithLedger(ctx, nil)
	if err != nil {
		return nil, err
	}

	type tally struct {
		sum decimal.Decimal
		n   int
	}
	byType := map[string]*tally{}
	for _, a := range accounts {
		t, ok := byType[str(a.Type)]
		if !ok {
			t = &tally{}
			byType[str(a.Type)] = t
		}
		t.sum = t.sum.Add(ledgerSum(a.Transactions))
		t.n += len(a.Transactions)
	}

	three := decimal.NewFromInt(3)
	var rows []LedgerLine
	for _, a := range accounts {
		if len(a.Transactions) == 0 {
			continue
		}
		t := byType[str(a.Type)]
		own := average(ledgerSum(a.Transactions), len(a.Transactions))
		if !own.GreaterThan(average(t.sum, t.n).Mul(three)) {
			continue
		}
		for _, tx := range a.Transactions {
			rows = append(rows, LedgerLine{
				AccountType: a.Type,
				AccNumber:   a.AccNumber,
				TransNumber: tx.TransNumber,
				Amount:      domain.NullMoney(tx.Amount),
			})
		}
	}
	slices.SortStableFunc(rows, func(a, b LedgerLine) int {
		return cmp.Or(
			strings.Compare(str(a.AccountType), str(b.AccountType)),
			cmp.Compare(a.AccNumber, b.AccNumber),
			cmp.Compare(a.TransNumber, b.TransNumber),
		)
	})
	return top(rows), nil
}
