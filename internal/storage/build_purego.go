//go:build purego || !sqlite_vec

package storage

// This file is compiled when building without CGO or with the purego tag.
// The pure Go driver has no loadable extensions, so the vector functions the
// queries rely on are registered as deterministic Go scalar functions with
// the same names and blob format as sqlite-vec.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...
//
// Driver used: modernc.org/sqlite

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates if the native vector extension is loaded
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"

	puregoVecVersion = "v0.1.6-purego"
)

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction("vec_distance_l2", 2, vecDistanceL2); err != nil {
		panic(fmt.Sprintf("register vec_distance_l2: %v", err))
	}
	if err := sqlite.RegisterDeterministicScalarFunction("vec_version", 0, vecVersion); err != nil {
		panic(fmt.Sprintf("register vec_version: %v", err))
	}
}

func vecDistanceL2(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, ok := args[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("vec_distance_l2: first argument must be a float32 blob")
	}
	b, ok := args[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("vec_distance_l2: second argument must be a float32 blob")
	}
	if len(a) != len(b) || len(a)%4 != 0 {
		return nil, fmt.Errorf("vec_distance_l2: vector dimensions differ (%d vs %d bytes)", len(a), len(b))
	}
	return l2Distance(deserializeVector(a), deserializeVector(b)), nil
}

func vecVersion(_ *sqlite.FunctionContext, _ []driver.Value) (driver.Value, error) {
	return puregoVecVersion, nil
}

// encodeVector serializes an embedding in the sqlite-vec float32 blob format
func encodeVector(vector []float32) ([]byte, error) {
	return serializeVector(vector), nil
}
