package test

import (
	"github.com/careloop/guardrail/audit"
)

func MustMakeAuditQueue(size int) *audit.Queue {
	queue, err := audit.NewQueue(size, "", nil)
	if err != nil {
		panic(err)
	}
	return queue
}
