// services/numbering.go
package services

import (
	"fmt"
	"strconv"
	"strings"

	"go-loket-queue/models"
)

// queueNumberer issues "<prefix>-<NNN>" labels from one counter per prefix.
// It is not safe for concurrent use; QueueStore guards it.
type queueNumberer struct {
	last map[string]int
}

func newQueueNumberer() *queueNumberer {
	return &queueNumberer{last: make(map[string]int)}
}

func (n *queueNumberer) next(prefix string) string {
	n.last[prefix]++
	return formatQueueNumber(prefix, n.last[prefix])
}

// observe advances the prefix counter past an already issued label, so that
// numbering continues after a restart instead of starting over.
func (n *queueNumberer) observe(queueNumber string) {
	prefix, seq, ok := parseQueueNumber(queueNumber)
	if !ok {
		return
	}
	if seq > n.last[prefix] {
		n.last[prefix] = seq
	}
}

func (n *queueNumberer) reset() {
	n.last = make(map[string]int)
}

func formatQueueNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

func parseQueueNumber(queueNumber string) (string, int, bool) {
	prefix, digits, found := strings.Cut(queueNumber, "-")
	if !found || prefix == "" {
		return "", 0, false
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 0 {
		return "", 0, false
	}
	return prefix, seq, true
}

// restoreNumbering seeds a numberer from previously persisted patients.
func restoreNumbering(n *queueNumberer, patients []models.Patient) {
	for _, p := range patients {
		n.observe(p.QueueNumber)
	}
}
