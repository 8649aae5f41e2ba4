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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wimkeir/graft-sub000/analysis/cpg"
	"github.com/wimkeir/graft-sub000/analysis/taint"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE vertices (
    id INTEGER PRIMARY KEY,
    label TEXT NOT NULL,
    kind TEXT NOT NULL,
    method TEXT,
    code TEXT
);

CREATE TABLE edges (
    id INTEGER PRIMARY KEY,
    label TEXT NOT NULL,
    role TEXT,
    source INTEGER NOT NULL,
    target INTEGER NOT NULL
);

CREATE TABLE vertex_props (
    vertex INTEGER NOT NULL,
    key TEXT NOT NULL,
    value,
    PRIMARY KEY (vertex, key)
);

CREATE TABLE edge_props (
    edge INTEGER NOT NULL,
    key TEXT NOT NULL,
    value,
    PRIMARY KEY (edge, key)
);

CREATE TABLE vulnerabilities (
    id TEXT PRIMARY KEY,
    source INTEGER NOT NULL,
    sink INTEGER NOT NULL,
    variable TEXT NOT NULL,
    method TEXT,
    source_signature TEXT,
    sink_signature TEXT,
    path TEXT NOT NULL,
    path_count INTEGER NOT NULL
);
`

const indexes = `
CREATE INDEX idx_vertices_kind ON vertices(label, kind);
CREATE INDEX idx_vertices_method ON vertices(method);
CREATE INDEX idx_edges_source ON edges(source, label);
CREATE INDEX idx_edges_target ON edges(target, label);
`

// WriteDB writes the store, and the vulnerabilities found in it, to a new SQLite database at path. An existing file
// at path is replaced.
func WriteDB(path string, store *cpg.Store, vulns []taint.Vulnerability) (err error) {
	_ = os.Remove(path) // ignore if doesn't exist

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	if err = insertVertices(conn, store); err != nil {
		return err
	}
	if err = insertEdges(conn, store); err != nil {
		return err
	}
	if err = insertVulnerabilities(conn, vulns); err != nil {
		return err
	}
	if err = sqlitex.ExecuteScript(conn, indexes, nil); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func insertVertices(conn *sqlite.Conn, store *cpg.Store) error {
	stmt, err := conn.Prepare(`INSERT INTO vertices (id, label, kind, method, code) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vertex insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for id := cpg.VertexID(1); id <= store.MaxVertexID(); id++ {
		v := store.Vertex(id)
		stmt.BindInt64(1, int64(v.ID))
		stmt.BindText(2, string(v.Label))
		stmt.BindText(3, string(v.Kind))
		bindTextOrNull(stmt, 4, v.Method())
		bindTextOrNull(stmt, 5, v.Props.String(cpg.PropCode))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert vertex %d: %w", v.ID, err)
		}
		_ = stmt.Reset()
		if err := insertProps(conn, "vertex_props", int64(v.ID), v.Props); err != nil {
			return err
		}
	}
	return nil
}

func insertEdges(conn *sqlite.Conn, store *cpg.Store) error {
	stmt, err := conn.Prepare(`INSERT INTO edges (id, label, role, source, target) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for id := 1; id <= store.NumEdges(); id++ {
		e := store.Edge(cpg.EdgeID(id))
		stmt.BindInt64(1, int64(e.ID))
		stmt.BindText(2, string(e.Label))
		bindTextOrNull(stmt, 3, e.Role)
		stmt.BindInt64(4, int64(e.From))
		stmt.BindInt64(5, int64(e.To))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert edge %s: %w", e, err)
		}
		_ = stmt.Reset()
		if err := insertProps(conn, "edge_props", int64(e.ID), e.Props); err != nil {
			return err
		}
	}
	return nil
}

// insertProps uses the connection's statement cache: the statement is prepared once per table
func insertProps(conn *sqlite.Conn, table string, owner int64, p cpg.Properties) error {
	if len(p) == 0 {
		return nil
	}
	stmt, err := conn.Prepare(`INSERT INTO ` + table + ` VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	for k, v := range p {
		stmt.BindInt64(1, owner)
		stmt.BindText(2, k)
		switch x := v.(type) {
		case int:
			stmt.BindInt64(3, int64(x))
		case string:
			stmt.BindText(3, x)
		default:
			stmt.BindText(3, fmt.Sprint(x))
		}
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert %s of %d: %w", table, owner, err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func insertVulnerabilities(conn *sqlite.Conn, vulns []taint.Vulnerability) error {
	if len(vulns) == 0 {
		return nil
	}
	stmt, err := conn.Prepare(`INSERT OR IGNORE INTO vulnerabilities (id, source, sink, variable, method,
		source_signature, sink_signature, path, path_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vulnerability insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for _, v := range vulns {
		stmt.BindText(1, v.ID)
		stmt.BindInt64(2, int64(v.Source))
		stmt.BindInt64(3, int64(v.Sink))
		stmt.BindText(4, v.Variable)
		bindTextOrNull(stmt, 5, v.Method)
		bindTextOrNull(stmt, 6, v.SourceSignature)
		bindTextOrNull(stmt, 7, v.SinkSignature)
		stmt.BindText(8, formatPath(v.Path))
		stmt.BindInt64(9, int64(v.PathCount))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert vulnerability %s: %w", v.ID, err)
		}
		_ = stmt.Reset()
	}
	return nil
}

func bindTextOrNull(stmt *sqlite.Stmt, i int, s string) {
	if s == "" {
		stmt.BindNull(i)
	} else {
		stmt.BindText(i, s)
	}
}

func formatPath(path []cpg.VertexID) string {
	ids := make([]string, len(path))
	for i, id := range path {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(ids, " ")
}

func parsePath(s string) ([]cpg.VertexID, error) {
	var path []cpg.VertexID
	for _, f := range strings.Fields(s) {
		id, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad path %q: %w", s, err)
		}
		path = append(path, cpg.VertexID(id))
	}
	return path, nil
}

func columnValue(stmt *sqlite.Stmt, col int) any {
	if stmt.ColumnType(col) == sqlite.TypeInteger {
		return int(stmt.ColumnInt64(col))
	}
	return stmt.ColumnText(col)
}

// ReadDB restores the store written to the database at path by WriteDB.
func ReadDB(path string) (*cpg.Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var s snapshot
	s.Format = SnapshotFormat
	vertexProps := map[uint32]cpg.Properties{}
	edgeProps := map[uint32]cpg.Properties{}
	readProps := func(table string, into map[uint32]cpg.Properties) error {
		return sqlitex.Execute(conn, `SELECT * FROM `+table, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				owner := uint32(stmt.ColumnInt64(0))
				if into[owner] == nil {
					into[owner] = cpg.Properties{}
				}
				into[owner][stmt.ColumnText(1)] = columnValue(stmt, 2)
				return nil
			},
		})
	}
	if err := readProps("vertex_props", vertexProps); err != nil {
		return nil, fmt.Errorf("read vertex properties: %w", err)
	}
	if err := readProps("edge_props", edgeProps); err != nil {
		return nil, fmt.Errorf("read edge properties: %w", err)
	}

	err = sqlitex.Execute(conn, `SELECT id, label, kind FROM vertices ORDER BY id`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id := uint32(stmt.ColumnInt64(0))
			s.Vertices = append(s.Vertices, vertexRecord{
				ID:    id,
				Label: stmt.ColumnText(1),
				Kind:  stmt.ColumnText(2),
				Props: splitProps(vertexProps[id]),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("read vertices: %w", err)
	}
	err = sqlitex.Execute(conn, `SELECT id, label, role, source, target FROM edges ORDER BY id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id := uint32(stmt.ColumnInt64(0))
				s.Edges = append(s.Edges, edgeRecord{
					ID:    id,
					Label: stmt.ColumnText(1),
					Role:  stmt.ColumnText(2),
					From:  uint32(stmt.ColumnInt64(3)),
					To:    uint32(stmt.ColumnInt64(4)),
					Props: splitProps(edgeProps[id]),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return s.restore()
}

// ReadVulnerabilities returns the vulnerabilities written to the database at path, ordered by source and sink.
func ReadVulnerabilities(path string) ([]taint.Vulnerability, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var vulns []taint.Vulnerability
	err = sqlitex.Execute(conn, `SELECT id, source, sink, variable, method, source_signature, sink_signature, path,
		path_count FROM vulnerabilities ORDER BY source, sink`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			path, err := parsePath(stmt.ColumnText(7))
			if err != nil {
				return err
			}
			vulns = append(vulns, taint.Vulnerability{
				ID:              stmt.ColumnText(0),
				Source:          cpg.VertexID(stmt.ColumnInt64(1)),
				Sink:            cpg.VertexID(stmt.ColumnInt64(2)),
				Variable:        stmt.ColumnText(3),
				Method:          stmt.ColumnText(4),
				SourceSignature: stmt.ColumnText(5),
				SinkSignature:   stmt.ColumnText(6),
				Path:            path,
				PathCount:       int(stmt.ColumnInt64(8)),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("read vulnerabilities: %w", err)
	}
	return vulns, nil
}
