package deltalog

import "github.com/tidwall/gjson"

// lastCheckpoint mirrors the small JSON pointer file Delta writers leave at
// _delta_log/_last_checkpoint.
type lastCheckpoint struct {
	Version int64
	Size    int64
	Parts   *int
}

func parseLastCheckpoint(raw []byte) (lastCheckpoint, error) {
	if !gjson.ValidBytes(raw) {
		return lastCheckpoint{}, newMalformed("_last_checkpoint is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	lc := lastCheckpoint{
		Version: root.Get("version").Int(),
		Size:    root.Get("size").Int(),
	}
	if parts := root.Get("parts"); parts.Exists() {
		p := int(parts.Int())
		lc.Parts = &p
	}
	return lc, nil
}
