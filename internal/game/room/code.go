package room

import "crypto/rand"

// Alphabet is the restricted character set room codes are drawn from.
// Visually ambiguous characters (I, O, 0, 1) are excluded.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomCode draws a fixed-length code from Alphabet using rejection
// sampling so every character is uniformly distributed.
//
// Precondition: n > 0.
func randomCode(n int) string {
	const max = byte(255 - (256 % len(Alphabet)))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)

	for {
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}

		for _, b := range buf {
			if b <= max {
				out = append(out, Alphabet[int(b)%len(Alphabet)])
				if len(out) == n {
					return string(out)
				}
			}
		}
	}
}
