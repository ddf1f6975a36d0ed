package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		pid      int
		alive    bool
		expected State
	}{
		{name: "live pid is running", pid: 42, alive: true, expected: State{Running: true, PID: 42}},
		{name: "dead pid is stopped", pid: 42, alive: false, expected: State{}},
		{name: "zero pid is stopped", pid: 0, alive: true, expected: State{}},
		{name: "negative pid is stopped", pid: -1, alive: true, expected: State{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.pid, tt.alive))
		})
	}
}
