package ledger

// Summarize projects a netted matrix onto viewer's settle-up lines.
// The view covers the current members plus any former member who still has a
// non-zero balance with the viewer.
func Summarize(netted *Matrix, current []int64, viewer int64) ([]ViewLine, error) {
	if !containsID(current, viewer) {
		return nil, reject(ErrUnknownMember, "member %d is not part of the group", viewer)
	}
	return ProjectView(netted, ViewMembers(netted, current, viewer), viewer), nil
}

// ViewMembers returns the ids a view for viewer should iterate:
// the current members and every counterpart with an outstanding balance.
func ViewMembers(netted *Matrix, current []int64, viewer int64) []int64 {
	ids := append([]int64(nil), current...)
	for _, id := range netted.Counterparts(viewer) {
		if !containsID(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
