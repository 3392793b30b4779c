package Snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node
var once sync.Once

func Init(workId int64) (err error) {
	node, err = snowflake.NewNode(workId)
	return
}

func GenerateId() snowflake.ID {
	once.Do(func() {
		if node == nil {
			_ = Init(1)
		}
	})
	return node.Generate()
}

// RunId tags the log lines of one invocation.
func RunId() string {
	return GenerateId().Base58()
}
