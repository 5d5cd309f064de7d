package common

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// SetupIDGenerator initializes the snowflake node used for UUIDint64.
// Safe to call more than once; only the first call takes effect.
func SetupIDGenerator(nodeID int64) {
	idNodeOnce.Do(func() {
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			panic(err)
		}
		idNode = node
	})
}

// UUIDint64 returns a new snowflake id. SetupIDGenerator must be called first;
// a zero-node generator is created on demand so tests need no setup.
func UUIDint64() int64 {
	if idNode == nil {
		SetupIDGenerator(0)
	}
	return idNode.Generate().Int64()
}

// MakeDir creates a directory if it does not exist and returns its path.
func MakeDir(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = os.MkdirAll(path, 0o755)
	}
	return path
}

// FileExists checks whether the named file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AbsPath joins dir and name unless name is already absolute.
func AbsPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
