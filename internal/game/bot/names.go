package bot

import (
	"strings"

	"github.com/valyala/fastrand"
)

// botNames is the pool of display names for synthetic players.
var botNames = []string{
	"Robo-Ola", "Robo-Kari", "Robo-Per", "Robo-Nina", "Robo-Lars",
	"Robo-Ingrid", "Robo-Anders", "Robo-Silje", "Robo-Magnus",
	"Robo-Astrid", "Robo-Henrik", "Robo-Solveig", "Robo-Espen",
	"Robo-Tuva", "Robo-Sigurd", "Robo-Mari",
}

// pickName returns a bot name not already taken in the room, falling
// back to a numbered variant when the pool is exhausted.
func pickName(taken func(string) bool) string {
	offset := int(fastrand.Uint32n(uint32(len(botNames))))
	for i := 0; i < len(botNames); i++ {
		name := botNames[(offset+i)%len(botNames)]
		if !taken(name) {
			return name
		}
	}
	base := botNames[offset]
	for n := 2; ; n++ {
		name := base + " " + strings.Repeat("I", n)
		if !taken(name) {
			return name
		}
	}
}

// guessWords is the vocabulary bots draw free-text answers and word
// chain submissions from. Plain Norwegian nouns, spread across starting
// letters so a chain bot usually finds something to say.
var guessWords = []string{
	"appelsin", "ananas", "bil", "blomst", "due", "drage", "eple", "elg",
	"fjell", "fisk", "gris", "gaffel", "hus", "hest", "is", "iglo",
	"jordbær", "katt", "kube", "lampe", "lue", "mus", "måne", "nøkkel",
	"natt", "ost", "orm", "paraply", "potet", "rev", "rose", "sol",
	"seng", "tre", "tog", "ugle", "ulv", "vaffel", "vott", "ys",
}

// randomWord returns an arbitrary vocabulary word.
func randomWord() string {
	return guessWords[fastrand.Uint32n(uint32(len(guessWords)))]
}

// wordStartingWith returns a vocabulary word starting with the given
// letter that is not in avoid, or a random word when none fits — a bad
// submission just gets rejected like any other player's would.
func wordStartingWith(letter string, avoid map[string]bool) string {
	var fits []string
	for _, w := range guessWords {
		if strings.HasPrefix(w, letter) && !avoid[w] {
			fits = append(fits, w)
		}
	}
	if len(fits) == 0 {
		return randomWord()
	}
	return fits[fastrand.Uint32n(uint32(len(fits)))]
}
