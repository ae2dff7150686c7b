package model

// PlayerRef is the display data of a seated player.
type PlayerRef struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Shirt    string `json:"shirt"`
}

// StartingPositionsPerSet indexes the lineup as set -> team id -> position.
// Entries without a valid starting position for a set are left out.
func StartingPositionsPerSet(lineups []LineupEntry) map[int]map[string]map[int]PlayerRef {
	sets := make(map[int]map[string]map[int]PlayerRef)
	for _, l := range lineups {
		for set := range l.StartingPositions {
			pos := l.StartingPosition(set)
			if pos == 0 {
				continue
			}
			teams, ok := sets[set]
			if !ok {
				teams = make(map[string]map[int]PlayerRef)
				sets[set] = teams
			}
			slots, ok := teams[l.TeamID]
			if !ok {
				slots = make(map[int]PlayerRef)
				teams[l.TeamID] = slots
			}
			slots[pos] = PlayerRef{PlayerID: l.PlayerID, Name: l.Name, Shirt: l.Shirt}
		}
	}
	return sets
}
