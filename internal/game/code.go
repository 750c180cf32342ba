package game

import "crypto/rand"

const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const codeLen = 8

// NewGameCode returns a short random code teachers hand out to players.
// Collisions are not checked; 36^8 is plenty for this scale.
func NewGameCode() string {
	buf := make([]byte, codeLen)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
