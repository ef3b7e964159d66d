package ledger

import "roomledger/internal/models"

// MinimizeTransfers turns net balances into a small set of suggested
// transfers that would zero every balance. Greedy two-pointer matching over
// the input order: Aggregate sorts creditors largest-first, so big positions
// collapse early, but no ordering is required for correctness.
//
// The emitted transfers conserve value: per debtor they sum to that debtor's
// debt, per creditor to that creditor's credit. The output is advisory; a
// suggestion becomes real state only when a member initiates a payment.
func MinimizeTransfers(balances []models.Balance) []models.DebtLine {
	var debtors, creditors []models.Balance
	for _, b := range balances {
		switch {
		case b.NetMinor < 0:
			debtors = append(debtors, b)
		case b.NetMinor > 0:
			creditors = append(creditors, b)
		}
	}

	debtorRemaining := make([]int64, len(debtors))
	for i, d := range debtors {
		debtorRemaining[i] = -d.NetMinor
	}
	creditorRemaining := make([]int64, len(creditors))
	for i, c := range creditors {
		creditorRemaining[i] = c.NetMinor
	}

	var lines []models.DebtLine
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		transfer := debtorRemaining[i]
		if creditorRemaining[j] < transfer {
			transfer = creditorRemaining[j]
		}
		if transfer > 0 {
			lines = append(lines, models.DebtLine{
				FromUserID:  debtors[i].UserID,
				ToUserID:    creditors[j].UserID,
				AmountMinor: transfer,
			})
		}
		debtorRemaining[i] -= transfer
		creditorRemaining[j] -= transfer
		if debtorRemaining[i] == 0 {
			i++
		}
		if creditorRemaining[j] == 0 {
			j++
		}
	}
	return lines
}
