package matcher

// MissingIDs returns the ids in [0, count) that do not appear in ids, in
// ascending order.  Negative ids, used for padding rows, are ignored.
func MissingIDs(ids []int, count int) []int {

	if count <= 0 {
		return nil
	}

	seen := make([]bool, count)

	for _, id := range ids {
		if id >= 0 && id < count {
			seen[id] = true
		}
	}

	var missing []int

	for id, ok := range seen {
		if !ok {
			missing = append(missing, id)
		}
	}

	return missing
}
