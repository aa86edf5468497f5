// file: announcer/text.go
package announcer

import (
	"fmt"
	"strings"
	"unicode"
)

// RenderText builds the spoken sentence. Each letter and digit of the queue
// number is spoken on its own and separators are dropped:
// A-001 at loket 1 -> "Nomor antrian A 0 0 1 di Loket 1".
func RenderText(req Request) string {
	var parts []string
	for _, r := range req.QueueNumber {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			parts = append(parts, string(r))
		}
	}
	return fmt.Sprintf("Nomor antrian %s di Loket %s", strings.Join(parts, " "), req.LoketNumber)
}
