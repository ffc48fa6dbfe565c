package consistency

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// The partner network, the fallback database and the local analytics
// aggregator each spell the attribution identifier differently. Extraction
// is driven by these tables rather than per-field branching, so a new
// source shape is a data change, not a logic change.

// subIDAliases lists the alternate spellings of the identifier field on flat
// action records, in lookup priority order.
var subIDAliases = []string{"subId1", "SubId1", "Subid1", "subid1", "subID1", "sub_id1"}

// nestedSource describes a collection whose records carry the identifier one
// level down inside a sub-record.
type nestedSource struct {
	collection string
	container  string
}

var nestedSources = []nestedSource{
	{collection: "recentSales", container: "debug"},
	{collection: "earnings", container: "metadata"},
}

// ExtractSubIDs pulls every attribution identifier out of a dataset,
// whichever of the known collections it carries. Values are trimmed,
// stringified and unioned; missing collections and fields simply contribute
// nothing.
func ExtractSubIDs(dataset map[string]interface{}) map[string]struct{} {
	ids := make(map[string]struct{})
	if dataset == nil {
		return ids
	}

	for _, record := range records(dataset, "actions") {
		if id := lookupAlias(record); id != "" {
			ids[id] = struct{}{}
		}
	}

	for _, src := range nestedSources {
		for _, record := range records(dataset, src.collection) {
			sub, ok := record[src.container].(map[string]interface{})
			if !ok {
				continue
			}
			if id := lookupAlias(sub); id != "" {
				ids[id] = struct{}{}
			}
		}
	}

	return ids
}

// SortedSubIDs returns the set as a sorted slice for deterministic
// messages and assertions.
func SortedSubIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func records(dataset map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := dataset[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if record, ok := item.(map[string]interface{}); ok {
			out = append(out, record)
		}
	}
	return out
}

func lookupAlias(record map[string]interface{}) string {
	for _, alias := range subIDAliases {
		if value, ok := record[alias]; ok {
			if id := stringifySubID(value); id != "" {
				return id
			}
		}
	}
	return ""
}

func stringifySubID(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
