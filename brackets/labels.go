package brackets

import "fmt"

const ThirdPlaceLabel = "Third Place"

// EliminationRoundLabel names a knockout round by how many rounds remain after it
// and how many participants enter it.
func EliminationRoundLabel(roundsAfter, entrants int) string {
	switch roundsAfter {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Quarterfinal"
	}
	return fmt.Sprintf("Round of %d", entrants)
}

func GroupRoundLabel(round int) string {
	return fmt.Sprintf("Group Round %d", round)
}

func LeagueRoundLabel(round int) string {
	return fmt.Sprintf("Round %d", round)
}

// GroupLabel returns "A".."Z", then "G27", "G28", ...
func GroupLabel(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return fmt.Sprintf("G%d", index+1)
}
