// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"golang.org/x/exp/maps"
)

// SnapshotFormat is the version of the snapshot encoding
const SnapshotFormat = 1

// ErrCorruptSnapshot is returned when a snapshot does not describe a valid store
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// props keeps string and int property values apart, so that they decode to the types they were stored with.
// Entries are sorted by key: msgpack writes maps in iteration order.
type props struct {
	Strings []stringProp `msgpack:"s,omitempty"`
	Ints    []intProp    `msgpack:"i,omitempty"`
}

type stringProp struct {
	Key   string `msgpack:"k"`
	Value string `msgpack:"v"`
}

type intProp struct {
	Key   string `msgpack:"k"`
	Value int    `msgpack:"v"`
}

type vertexRecord struct {
	ID    uint32 `msgpack:"id"`
	Label string `msgpack:"label"`
	Kind  string `msgpack:"kind"`
	Props props  `msgpack:"props"`
}

type edgeRecord struct {
	ID    uint32 `msgpack:"id"`
	Label string `msgpack:"label"`
	Role  string `msgpack:"role,omitempty"`
	From  uint32 `msgpack:"from"`
	To    uint32 `msgpack:"to"`
	Props props  `msgpack:"props"`
}

type snapshot struct {
	Format   int            `msgpack:"format"`
	Vertices []vertexRecord `msgpack:"vertices"`
	Edges    []edgeRecord   `msgpack:"edges"`
}

func splitProps(p cpg.Properties) props {
	var r props
	keys := maps.Keys(p)
	sort.Strings(keys)
	for _, k := range keys {
		switch x := p[k].(type) {
		case int:
			r.Ints = append(r.Ints, intProp{Key: k, Value: x})
		case string:
			r.Strings = append(r.Strings, stringProp{Key: k, Value: x})
		}
	}
	return r
}

func (r props) merged() cpg.Properties {
	if len(r.Strings)+len(r.Ints) == 0 {
		return nil
	}
	p := make(cpg.Properties, len(r.Strings)+len(r.Ints))
	for _, e := range r.Strings {
		p[e.Key] = e.Value
	}
	for _, e := range r.Ints {
		p[e.Key] = e.Value
	}
	return p
}

func takeSnapshot(store *cpg.Store) snapshot {
	s := snapshot{Format: SnapshotFormat}
	for id := cpg.VertexID(1); id <= store.MaxVertexID(); id++ {
		v := store.Vertex(id)
		s.Vertices = append(s.Vertices, vertexRecord{
			ID:    uint32(v.ID),
			Label: string(v.Label),
			Kind:  string(v.Kind),
			Props: splitProps(v.Props),
		})
	}
	for id := 1; id <= store.NumEdges(); id++ {
		e := store.Edge(cpg.EdgeID(id))
		s.Edges = append(s.Edges, edgeRecord{
			ID:    uint32(e.ID),
			Label: string(e.Label),
			Role:  e.Role,
			From:  uint32(e.From),
			To:    uint32(e.To),
			Props: splitProps(e.Props),
		})
	}
	return s
}

// restore adds the records to a new store, checking that every record gets back its id
func (s snapshot) restore() (*cpg.Store, error) {
	store := cpg.NewStore()
	for _, r := range s.Vertices {
		id := store.AddVertex(cpg.VertexLabel(r.Label), cpg.Kind(r.Kind), r.Props.merged())
		if uint32(id) != r.ID {
			return nil, fmt.Errorf("%w: vertex %d restored as %d", ErrCorruptSnapshot, r.ID, id)
		}
	}
	max := uint32(store.MaxVertexID())
	for _, r := range s.Edges {
		if r.From == 0 || r.To == 0 || r.From > max || r.To > max {
			return nil, fmt.Errorf("%w: edge %d links missing vertices %d -> %d", ErrCorruptSnapshot, r.ID, r.From,
				r.To)
		}
		id := store.AddEdge(cpg.EdgeLabel(r.Label), r.Role, cpg.VertexID(r.From), cpg.VertexID(r.To),
			r.Props.merged())
		if uint32(id) != r.ID {
			return nil, fmt.Errorf("%w: edge %d restored as %d", ErrCorruptSnapshot, r.ID, id)
		}
	}
	return store, nil
}

// Save writes a snapshot of the store to w using msgpack. Records are written in id order and properties in key
// order: saving the same graph twice writes the same bytes.
func Save(store *cpg.Store, w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(takeSnapshot(store)); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// Load restores a store from a snapshot written by Save.
func Load(r io.Reader) (*cpg.Store, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	if s.Format != SnapshotFormat {
		return nil, fmt.Errorf("%w: unknown format %d", ErrCorruptSnapshot, s.Format)
	}
	return s.restore()
}

// SaveFile writes a snapshot of the store to the file path
func SaveFile(store *cpg.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	return Save(store, f)
}

// LoadFile restores a store from the snapshot in the file path
func LoadFile(path string) (*cpg.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
