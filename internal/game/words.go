package game

import "math/rand"

// Prompt pool shared by the word modes. Lowercase, a handful of two-word
// entries to exercise the space handling in hints.
var wordList = []string{
	"apple", "banana", "cherry", "dragon", "elephant", "forest", "guitar",
	"hammer", "island", "jungle", "kitten", "ladder", "mountain", "needle",
	"ocean", "pirate", "queen", "rocket", "sandwich", "turtle", "umbrella",
	"volcano", "whale", "xylophone", "yogurt", "zebra", "anchor", "bridge",
	"castle", "dolphin", "engine", "feather", "glacier", "helmet", "igloo",
	"jacket", "key", "lantern", "mirror", "nest", "octopus", "penguin",
	"quilt", "rainbow", "snowman", "tornado", "unicorn", "violin", "wizard",
	"acorn", "balloon", "cactus", "desert", "eagle", "flamingo", "garden",
	"harbor", "iceberg", "jellyfish", "kangaroo", "lighthouse", "magnet",
	"notebook", "orchid", "pyramid", "quicksand", "robot", "spider",
	"telescope", "vampire", "waterfall", "yacht", "zeppelin", "avocado",
	"bicycle", "compass", "dinosaur", "envelope", "firework", "gondola",
	"hurricane", "insect", "joker", "keyboard", "lobster", "meteor",
	"narwhal", "ostrich", "parrot", "quartz", "raccoon", "scissors",
	"treasure", "ukulele", "village", "windmill", "ice cream", "hot dog",
	"polar bear", "space ship", "tree house", "fire truck",
}

// pickRandomWords returns n distinct prompts. n larger than the pool clamps
// to the pool size.
func pickRandomWords(n int) []string {
	if n > len(wordList) {
		n = len(wordList)
	}
	idx := rand.Perm(len(wordList))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = wordList[j]
	}
	return out
}
