package deltalog

import (
	"bytes"
	"strconv"

	"github.com/tidwall/gjson"
)

// action is a parsed, tagged single line of a commit file. Exactly one of
// the pointer fields is non-nil, mirroring the Delta protocol's rule that
// each JSON line carries a single action key.
type action struct {
	kind       string
	add        *Add
	remove     *Remove
	metadata   *Metadata
	protocol   *Protocol
	txn        *Txn
	commitInfo *CommitInfo
}

// parseCommitFile splits raw into lines and parses each into an action.
// Blank lines are skipped. Unknown action kinds are reported via unknown
// so the caller can log-and-skip per spec.md §6 ("unknown action kinds are
// ignored with a warning") without this package depending on a logger.
func parseCommitFile(raw []byte) ([]action, []string, error) {
	var actions []action
	var unknown []string

	for _, line := range bytes.Split(raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, nil, newMalformed("invalid JSON in commit line")
		}

		root := gjson.ParseBytes(line)
		a, kind, err := parseActionLine(root)
		if err != nil {
			return nil, nil, err
		}
		if kind == "" {
			unknown = append(unknown, firstKey(root))
			continue
		}
		actions = append(actions, a)
	}
	return actions, unknown, nil
}

func firstKey(root gjson.Result) string {
	key := ""
	root.ForEach(func(k, _ gjson.Result) bool {
		key = k.String()
		return false
	})
	return key
}

func parseActionLine(root gjson.Result) (action, string, error) {
	switch {
	case root.Get("add").Exists():
		a, err := parseAdd(root.Get("add"))
		return action{kind: "add", add: &a}, "add", err
	case root.Get("remove").Exists():
		r, err := parseRemove(root.Get("remove"))
		return action{kind: "remove", remove: &r}, "remove", err
	case root.Get("metaData").Exists():
		m, err := parseMetadata(root.Get("metaData"))
		return action{kind: "metaData", metadata: &m}, "metaData", err
	case root.Get("protocol").Exists():
		p := parseProtocol(root.Get("protocol"))
		return action{kind: "protocol", protocol: &p}, "protocol", nil
	case root.Get("txn").Exists():
		t := parseTxn(root.Get("txn"))
		return action{kind: "txn", txn: &t}, "txn", nil
	case root.Get("commitInfo").Exists():
		c := parseCommitInfo(root.Get("commitInfo"))
		return action{kind: "commitInfo", commitInfo: &c}, "commitInfo", nil
	default:
		return action{}, "", nil
	}
}

func parseAdd(r gjson.Result) (Add, error) {
	a := Add{
		Path:             r.Get("path").String(),
		Size:             r.Get("size").Int(),
		ModificationTime: r.Get("modificationTime").Int(),
		DataChange:       r.Get("dataChange").Bool(),
	}
	if a.Path == "" {
		return a, newMalformed("add action missing path")
	}
	a.PartitionValues = parsePartitionValues(r.Get("partitionValues"))
	if statsRaw := r.Get("stats"); statsRaw.Exists() && statsRaw.String() != "" {
		a.Stats = parseStatsString(statsRaw.String())
	}
	return a, nil
}

func parseRemove(r gjson.Result) (Remove, error) {
	rm := Remove{
		Path:              r.Get("path").String(),
		DeletionTimestamp: r.Get("deletionTimestamp").Int(),
		DataChange:        r.Get("dataChange").Bool(),
	}
	if rm.Path == "" {
		return rm, newMalformed("remove action missing path")
	}
	if sz := r.Get("size"); sz.Exists() {
		v := sz.Int()
		rm.Size = &v
	}
	return rm, nil
}

func parseMetadata(r gjson.Result) (Metadata, error) {
	m := Metadata{
		ID:           r.Get("id").String(),
		Name:         r.Get("name").String(),
		Description:  r.Get("description").String(),
		SchemaString: r.Get("schemaString").String(),
	}
	for _, pc := range r.Get("partitionColumns").Array() {
		m.PartitionColumns = append(m.PartitionColumns, pc.String())
	}
	conf := r.Get("configuration")
	if conf.Exists() {
		m.Configuration = make(map[string]string)
		conf.ForEach(func(k, v gjson.Result) bool {
			m.Configuration[k.String()] = v.String()
			return true
		})
	}
	return m, nil
}

func parseProtocol(r gjson.Result) Protocol {
	return Protocol{
		MinReaderVersion: int(r.Get("minReaderVersion").Int()),
		MinWriterVersion: int(r.Get("minWriterVersion").Int()),
	}
}

func parseTxn(r gjson.Result) Txn {
	t := Txn{
		AppID:   r.Get("appId").String(),
		Version: r.Get("version").Int(),
	}
	if lu := r.Get("lastUpdated"); lu.Exists() {
		v := lu.Int()
		t.LastUpdate = &v
	}
	return t
}

func parseCommitInfo(r gjson.Result) CommitInfo {
	c := CommitInfo{Operation: r.Get("operation").String()}
	if ts := r.Get("timestamp"); ts.Exists() {
		v := ts.Int()
		c.Timestamp = &v
	}
	return c
}

func parsePartitionValues(r gjson.Result) map[string]*string {
	if !r.Exists() {
		return nil
	}
	out := make(map[string]*string)
	r.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.Null {
			out[k.String()] = nil
			return true
		}
		s := v.String()
		out[k.String()] = &s
		return true
	})
	return out
}

// parseStatsString parses the Delta "stats" field, itself a JSON string
// embedded in the action (spec.md §9: "an implementation may parse only
// the columns it needs").
func parseStatsString(s string) *Stats {
	if !gjson.Valid(s) {
		return nil
	}
	root := gjson.Parse(s)
	stats := &Stats{}
	if nr := root.Get("numRecords"); nr.Exists() {
		v := nr.Int()
		stats.NumRecords = &v
	}
	if min := root.Get("minValues"); min.Exists() {
		stats.MinValues = toMap(min)
	}
	if max := root.Get("maxValues"); max.Exists() {
		stats.MaxValues = toMap(max)
	}
	if nc := root.Get("nullCount"); nc.Exists() {
		stats.NullCount = toMap(nc)
	}
	return stats
}

func toMap(r gjson.Result) map[string]interface{} {
	out := make(map[string]interface{})
	r.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.Value()
		return true
	})
	return out
}

func formatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}
