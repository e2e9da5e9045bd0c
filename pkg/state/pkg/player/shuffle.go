package player

import "math/rand"

// shuffleOrder returns a permutation of queue indices derived from seed, starting with the first index.
func shuffleOrder(length int, first int, seed int64) []int {
	order := rand.New(rand.NewSource(seed)).Perm(length)
	for idx, queueIdx := range order {
		if queueIdx == first {
			order[0], order[idx] = order[idx], order[0]
			break
		}
	}

	return order
}

// orderPosition returns position of queueIdx in the play order, or -1 when it's not there.
func orderPosition(order []int, queueIdx int) int {
	for position, idx := range order {
		if idx == queueIdx {
			return position
		}
	}

	return -1
}
