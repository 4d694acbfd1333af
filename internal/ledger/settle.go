package ledger

import (
	"slices"

	"github.com/shopspring/decimal"
)

// noise is the magnitude below which a balance is treated as settled.
var noise = decimal.New(1, -2)

// round2 is the single rounding rule of the ledger: two places, half to even.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

type party struct {
	userID string
	weight decimal.Decimal // Positive magnitude still owed or due
}

// Settle turns net balances into payment instructions using greedy matching of
// the largest debtor against the largest creditor.
//
// Balances within ±0.01 of zero are ignored. Parties with equal weights keep
// their input order. The input slice is not modified.
func Settle(balances []Balance) []Transfer {
	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.Amount.LessThan(noise.Neg()):
			debtors = append(debtors, party{userID: b.UserID, weight: b.Amount.Neg()})
		case b.Amount.GreaterThan(noise):
			creditors = append(creditors, party{userID: b.UserID, weight: b.Amount})
		}
	}
	byWeightDesc := func(a, b party) int { return b.weight.Cmp(a.weight) }
	slices.SortStableFunc(debtors, byWeightDesc)
	slices.SortStableFunc(creditors, byWeightDesc)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := round2(decimal.Min(debtor.weight, creditor.weight))
		transfers = append(transfers, Transfer{
			From:   debtor.userID,
			To:     creditor.userID,
			Amount: amount,
		})

		debtors[i].weight = debtor.weight.Sub(amount)
		creditors[j].weight = creditor.weight.Sub(amount)

		// Move past whoever is fully settled
		if debtors[i].weight.LessThan(noise) {
			i++
		}
		if creditors[j].weight.LessThan(noise) {
			j++
		}
	}

	return transfers
}
