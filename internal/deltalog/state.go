package deltalog

import (
	"sort"

	"github.com/deltakit/deltakit/internal/errors"
)

// replayState is the mutable accumulator replay folds actions into,
// version by version, before being frozen into an immutable Snapshot
// (spec.md §4.2's replay algorithm).
type replayState struct {
	active     map[string]Add
	metadata   Metadata
	protocol   Protocol
	tombstones []Tombstone
}

func newReplayState() *replayState {
	return &replayState{active: make(map[string]Add)}
}

func (s *replayState) applyAdd(a Add, _ int64) {
	s.active[a.Path] = a
}

func (s *replayState) applyRemove(r Remove, atVersion int64) {
	delete(s.active, r.Path)
	s.tombstones = append(s.tombstones, Tombstone{AtVersion: atVersion, Remove: r})
}

func (s *replayState) applyProtocol(p Protocol) error {
	if p.MinReaderVersion > maxSupportedReaderVersion {
		return errors.New(ErrUnsupportedProtocol, "table requires a newer reader protocol than this implementation supports", nil).
			AddContext("min_reader_version", formatVersion(int64(p.MinReaderVersion))).
			AddContext("supported_reader_version", formatVersion(int64(maxSupportedReaderVersion)))
	}
	s.protocol = p
	return nil
}

// apply folds one parsed action into the state in file order, per
// spec.md §4.2 step 3.
func (s *replayState) apply(a action, atVersion int64) error {
	switch a.kind {
	case "add":
		s.applyAdd(*a.add, atVersion)
	case "remove":
		s.applyRemove(*a.remove, atVersion)
	case "metaData":
		s.metadata = *a.metadata
	case "protocol":
		return s.applyProtocol(*a.protocol)
	case "txn", "commitInfo":
		// informational only, per spec.md §4.2 step 3.
	}
	return nil
}

// toSnapshot freezes the active set into lexicographic path order and
// returns an immutable Snapshot (spec.md §4.2's "Ordering and determinism").
func (s *replayState) toSnapshot(version int64) *Snapshot {
	paths := make([]string, 0, len(s.active))
	for p := range s.active {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	active := make([]Add, len(paths))
	idx := make(map[string]int, len(paths))
	for i, p := range paths {
		active[i] = s.active[p]
		idx[p] = i
	}

	tombstones := make([]Tombstone, len(s.tombstones))
	copy(tombstones, s.tombstones)

	return &Snapshot{
		version:    version,
		metadata:   s.metadata,
		protocol:   s.protocol,
		active:     active,
		activeIdx:  idx,
		tombstones: tombstones,
	}
}
