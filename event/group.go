package event

import "sort"

// Group is the ordered set of records that share one grouping key.
type Group struct {
	Key     string
	Records []Record
}

// Identity returns the first present event id and event label in record order.
func (g Group) Identity() (id, label Value) {
	for _, r := range g.Records {
		if !id.IsPresent() {
			id = r.EventID
		}
		if !label.IsPresent() {
			label = r.EventLabel
		}
		if id.IsPresent() && label.IsPresent() {
			break
		}
	}
	return id, label
}

// GroupRows partitions rows by the value of column. Groups are ordered by key
// and keep the original row order. Rows whose key is missing are not grouped;
// their count is returned as dropped.
func GroupRows(rows []Row, column string) (groups []Group, dropped int) {
	index := make(map[string]int)
	for _, row := range rows {
		key, ok := row.Value(column).Get()
		if !ok {
			dropped++
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, Extract(row))
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Key < groups[b].Key
	})
	return groups, dropped
}
