package deltalog

import (
	"bytes"
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/deltakit/deltakit/internal/errors"
)

// checkpointContents is the materialized state a Delta checkpoint parquet
// file carries: one nullable struct column per action kind, at most one
// populated per row (spec.md §3's Checkpoint entity).
type checkpointContents struct {
	adds     []Add
	removes  []Remove
	metadata *Metadata
	protocol *Protocol
}

// parseCheckpoint reads a checkpoint's columnar parquet bytes. It parses
// only the columns the replayer needs (path, size, partitionValues,
// stats, deletionTimestamp) and treats unknown columns as inert, per
// spec.md §9.
func parseCheckpoint(raw []byte) (checkpointContents, error) {
	rdr, err := file.NewParquetReader(bytes.NewReader(raw))
	if err != nil {
		return checkpointContents{}, errors.New(ErrCorruptLog, "failed to open checkpoint parquet", err)
	}
	defer rdr.Close()

	arrowRdr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return checkpointContents{}, errors.New(ErrCorruptLog, "failed to construct arrow reader over checkpoint", err)
	}

	table, err := arrowRdr.ReadTable(context.Background())
	if err != nil {
		return checkpointContents{}, errors.New(ErrCorruptLog, "failed to read checkpoint table", err)
	}
	defer table.Release()

	var out checkpointContents
	schema := table.Schema()

	for colIdx := 0; colIdx < int(table.NumCols()); colIdx++ {
		field := schema.Field(colIdx)
		col := table.Column(colIdx)
		switch field.Name {
		case "add":
			adds, err := extractAdds(col)
			if err != nil {
				return out, err
			}
			out.adds = append(out.adds, adds...)
		case "remove":
			removes, err := extractRemoves(col)
			if err != nil {
				return out, err
			}
			out.removes = append(out.removes, removes...)
		case "metaData":
			m, err := extractMetadata(col)
			if err != nil {
				return out, err
			}
			if m != nil {
				out.metadata = m
			}
		case "protocol":
			p, err := extractProtocol(col)
			if err != nil {
				return out, err
			}
			if p != nil {
				out.protocol = p
			}
		}
	}
	return out, nil
}

func extractAdds(col *arrow.Column) ([]Add, error) {
	var adds []Add
	for _, chunk := range col.Data().Chunks() {
		structArr, ok := chunk.(*array.Struct)
		if !ok {
			continue
		}
		pathArr := structChild(structArr, "path")
		sizeArr := structChild(structArr, "size")
		dataChangeArr := structChild(structArr, "dataChange")
		modTimeArr := structChild(structArr, "modificationTime")
		partitionArr := structChild(structArr, "partitionValues")
		statsArr := structChild(structArr, "stats")

		for row := 0; row < structArr.Len(); row++ {
			if structArr.IsNull(row) {
				continue
			}
			add := Add{
				Path:             stringAt(pathArr, row),
				Size:             int64At(sizeArr, row),
				DataChange:       boolAt(dataChangeArr, row),
				ModificationTime: int64At(modTimeArr, row),
			}
			if add.Path == "" {
				return nil, newMalformed("checkpoint add row missing path")
			}
			add.PartitionValues = mapStringAt(partitionArr, row)
			if s := stringAt(statsArr, row); s != "" {
				add.Stats = parseStatsString(s)
			}
			adds = append(adds, add)
		}
	}
	return adds, nil
}

func extractRemoves(col *arrow.Column) ([]Remove, error) {
	var removes []Remove
	for _, chunk := range col.Data().Chunks() {
		structArr, ok := chunk.(*array.Struct)
		if !ok {
			continue
		}
		pathArr := structChild(structArr, "path")
		delTsArr := structChild(structArr, "deletionTimestamp")
		dataChangeArr := structChild(structArr, "dataChange")
		sizeArr := structChild(structArr, "size")

		for row := 0; row < structArr.Len(); row++ {
			if structArr.IsNull(row) {
				continue
			}
			rm := Remove{
				Path:              stringAt(pathArr, row),
				DeletionTimestamp: int64At(delTsArr, row),
				DataChange:        boolAt(dataChangeArr, row),
			}
			if rm.Path == "" {
				return nil, newMalformed("checkpoint remove row missing path")
			}
			if sizeArr != nil && !sizeArr.IsNull(row) {
				v := int64At(sizeArr, row)
				rm.Size = &v
			}
			removes = append(removes, rm)
		}
	}
	return removes, nil
}

func extractMetadata(col *arrow.Column) (*Metadata, error) {
	for _, chunk := range col.Data().Chunks() {
		structArr, ok := chunk.(*array.Struct)
		if !ok {
			continue
		}
		idArr := structChild(structArr, "id")
		nameArr := structChild(structArr, "name")
		descArr := structChild(structArr, "description")
		schemaArr := structChild(structArr, "schemaString")
		partColsArr := structChild(structArr, "partitionColumns")

		for row := structArr.Len() - 1; row >= 0; row-- {
			if structArr.IsNull(row) {
				continue
			}
			m := &Metadata{
				ID:           stringAt(idArr, row),
				Name:         stringAt(nameArr, row),
				Description:  stringAt(descArr, row),
				SchemaString: stringAt(schemaArr, row),
			}
			m.PartitionColumns = listStringAt(partColsArr, row)
			return m, nil
		}
	}
	return nil, nil
}

func extractProtocol(col *arrow.Column) (*Protocol, error) {
	for _, chunk := range col.Data().Chunks() {
		structArr, ok := chunk.(*array.Struct)
		if !ok {
			continue
		}
		readerArr := structChild(structArr, "minReaderVersion")
		writerArr := structChild(structArr, "minWriterVersion")

		for row := structArr.Len() - 1; row >= 0; row-- {
			if structArr.IsNull(row) {
				continue
			}
			return &Protocol{
				MinReaderVersion: int(int64At(readerArr, row)),
				MinWriterVersion: int(int64At(writerArr, row)),
			}, nil
		}
	}
	return nil, nil
}

// structChild looks up a named field within a struct array, returning nil
// if the checkpoint schema doesn't carry it (treated as inert per spec.md §9).
func structChild(s *array.Struct, name string) arrow.Array {
	dt, ok := s.DataType().(*arrow.StructType)
	if !ok {
		return nil
	}
	idx, found := dt.FieldIdx(name)
	if !found {
		return nil
	}
	return s.Field(idx)
}

func stringAt(arr arrow.Array, row int) string {
	if arr == nil || row >= arr.Len() || arr.IsNull(row) {
		return ""
	}
	if v, ok := arr.(*array.String); ok {
		return v.Value(row)
	}
	return ""
}

func int64At(arr arrow.Array, row int) int64 {
	if arr == nil || row >= arr.Len() || arr.IsNull(row) {
		return 0
	}
	switch v := arr.(type) {
	case *array.Int64:
		return v.Value(row)
	case *array.Int32:
		return int64(v.Value(row))
	default:
		return 0
	}
}

func boolAt(arr arrow.Array, row int) bool {
	if arr == nil || row >= arr.Len() || arr.IsNull(row) {
		return false
	}
	if v, ok := arr.(*array.Boolean); ok {
		return v.Value(row)
	}
	return false
}

func mapStringAt(arr arrow.Array, row int) map[string]*string {
	if arr == nil || row >= arr.Len() || arr.IsNull(row) {
		return nil
	}
	m, ok := arr.(*array.Map)
	if !ok {
		return nil
	}
	start, end := m.ValueOffsets(row)
	keys, ok1 := m.Keys().(*array.String)
	values, ok2 := m.Items().(*array.String)
	if !ok1 || !ok2 {
		return nil
	}
	out := make(map[string]*string)
	for i := start; i < end; i++ {
		k := keys.Value(int(i))
		if values.IsNull(int(i)) {
			out[k] = nil
			continue
		}
		v := values.Value(int(i))
		out[k] = &v
	}
	return out
}

func listStringAt(arr arrow.Array, row int) []string {
	if arr == nil || row >= arr.Len() || arr.IsNull(row) {
		return nil
	}
	l, ok := arr.(*array.List)
	if !ok {
		return nil
	}
	start, end := l.ValueOffsets(row)
	values, ok := l.ListValues().(*array.String)
	if !ok {
		return nil
	}
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, values.Value(int(i)))
	}
	return out
}
