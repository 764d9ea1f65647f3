package scene

// orbitLanes maps light ids to orbit lanes. A light keeps its lane for as
// long as it stays in the rig, so removing one light never moves another.
type orbitLanes map[string]int

// assign returns the lane of each id. Ids no longer present free their lane;
// new ids take the lowest free lanes in order.
func (l orbitLanes) assign(ids []string) []int {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	taken := make(map[int]bool, len(ids))
	for id, lane := range l {
		if !present[id] {
			delete(l, id)
			continue
		}
		taken[lane] = true
	}

	out := make([]int, len(ids))
	free := 0
	for i, id := range ids {
		lane, ok := l[id]
		if !ok {
			for taken[free] {
				free++
			}
			lane = free
			l[id] = lane
			taken[lane] = true
		}
		out[i] = lane
	}
	return out
}
