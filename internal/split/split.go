// Package split partitions an expense amount into per-member shares in
// integer minor units, with no rounding loss.
package split

import "errors"

var (
	ErrNoParticipants    = errors.New("no participants for expense")
	ErrNonPositiveAmount = errors.New("expense amount must be positive")
	ErrDuplicateUser     = errors.New("duplicate participant")
)

// Allocate splits totalMinor cents across participants in the order given.
// Every participant gets totalMinor/n cents; the first totalMinor%n
// participants get one extra cent, so the shares always sum to totalMinor
// exactly and no two shares differ by more than one cent. The walk order is
// the supplied order, which keeps re-allocation on expense edits
// deterministic.
func Allocate(totalMinor int64, participants []string) (map[string]int64, error) {
	if totalMinor <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	n := int64(len(participants))
	base := totalMinor / n
	remainder := totalMinor - base*n

	shares := make(map[string]int64, len(participants))
	for i, userID := range participants {
		if _, exists := shares[userID]; exists {
			return nil, ErrDuplicateUser
		}
		share := base
		if int64(i) < remainder {
			share++
		}
		shares[userID] = share
	}
	return shares, nil
}
