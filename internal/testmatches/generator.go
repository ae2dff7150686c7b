package testmatches

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/okian/libero/internal/domain/model"
)

const (
	setsToWin      = 3
	regularTarget  = 25
	decidingTarget = 15
	benchShirt     = "7"
	subAtPoints    = 12
	sentinelEvery  = 5
)

// Generate plays a random best-of-five match between teamA and teamB. Each
// team has six starters and one bench player who may come on mid-set.
func Generate(rng *rand.Rand, matchID, teamA, teamB string) *model.Match {
	b := NewBuilder(matchID).Teams(teamA, "Team "+teamA, teamB, "Team "+teamB)
	for _, team := range []string{teamA, teamB} {
		for pos := 1; pos <= 6; pos++ {
			positions := make(map[int]int, setsToWin*2-1)
			for set := 1; set <= setsToWin*2-1; set++ {
				positions[set] = (pos+set-2)%6 + 1
			}
			id := team + "-" + strconv.Itoa(pos)
			b.Player(id, team, "Player "+id, strconv.Itoa(pos), positions)
		}
		b.Player(team+"-7", team, "Player "+team+"-7", benchShirt, nil)
		b.Captain(team + "-1")
	}

	won := map[string]int{}
	set := 0
	for won[teamA] < setsToWin && won[teamB] < setsToWin {
		set++
		target := regularTarget
		if set == setsToWin*2-1 {
			target = decidingTarget
		}
		b.SetStart(set)
		server := teamA
		if rng.Intn(2) == 1 {
			server = teamB
		}
		b.Serve(set, server)

		subbed := map[string]bool{}
		a, bb := 0, 0
		for !setOver(a, bb, target) {
			winner := teamA
			if rng.Intn(2) == 1 {
				winner = teamB
			}
			if winner == teamA {
				a++
			} else {
				bb++
			}
			scorer := winner + "-" + strconv.Itoa(rng.Intn(6)+1)
			if rng.Intn(sentinelEvery) == 0 {
				scorer = "1"
			}
			b.Point(set, winner, scorer, fmt.Sprintf("%d-%d", a, bb))

			for _, team := range []string{teamA, teamB} {
				if !subbed[team] && max(a, bb) == subAtPoints && rng.Intn(2) == 0 {
					subbed[team] = true
					b.Timeout(set, team)
					b.Sub(set, team, team+"-7", team+"-"+strconv.Itoa(rng.Intn(6)+1))
				}
			}
		}
		if a > bb {
			won[teamA]++
		} else {
			won[teamB]++
		}
		b.SegmentEnd(set)
	}
	b.MatchEnd(set)
	return b.Final(won[teamA], won[teamB]).Build()
}

func setOver(a, b, target int) bool {
	hi, lo := max(a, b), min(a, b)
	return hi >= target && hi-lo >= 2
}
