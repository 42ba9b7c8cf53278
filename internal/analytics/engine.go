// Package analytics turns a list of journal trades into a performance summary.
//
// Compute is pure: it never touches storage and never mutates its input, so it
// is safe to call from concurrent requests.
package analytics

import (
	"sort"

	"trading-journal/internal/model"
)

type Summary struct {
	TotalTrades int     `json:"totalTrades"`
	WinRate     float64 `json:"winRate"`
	AvgWinR     float64 `json:"avgWinR"`
	AvgLossR    float64 `json:"avgLossR"`
	Expectancy  float64 `json:"expectancy"`
	TotalR      float64 `json:"totalR"`
	LargestWin  float64 `json:"largestWin"`
	LargestLoss float64 `json:"largestLoss"`

	BySetup     []SetupPerformance   `json:"bySetup"`
	BySession   []SessionPerformance `json:"bySession"`
	ByEmotion   []EmotionPerformance `json:"byEmotion"`
	EquityCurve []EquityCurvePoint   `json:"equityCurve"`
}

type SetupPerformance struct {
	Setup   model.Setup `json:"setup"`
	Trades  int         `json:"trades"`
	WinRate float64     `json:"winRate"`
	AvgR    float64     `json:"avgR"`
	TotalR  float64     `json:"totalR"`
}

type SessionPerformance struct {
	Session model.Session `json:"session"`
	Trades  int           `json:"trades"`
	WinRate float64       `json:"winRate"`
	AvgR    float64       `json:"avgR"`
	TotalR  float64       `json:"totalR"`
}

type EmotionPerformance struct {
	Emotion model.Emotion `json:"emotion"`
	Trades  int           `json:"trades"`
	WinRate float64       `json:"winRate"`
	AvgR    float64       `json:"avgR"`
}

type EquityCurvePoint struct {
	Date        model.Date  `json:"date"`
	CumulativeR float64     `json:"cumulativeR"`
	Trade       model.Trade `json:"trade"`
}

// Empty is the summary of a journal without closed trades.
func Empty() Summary {
	return Summary{
		BySetup:     []SetupPerformance{},
		BySession:   []SessionPerformance{},
		ByEmotion:   []EmotionPerformance{},
		EquityCurve: []EquityCurvePoint{},
	}
}

// Compute summarizes the closed trades in trades. A trade is closed when its
// result is not open and it carries an R-multiple; everything else is ignored.
func Compute(trades []model.Trade) Summary {
	closed := make([]model.Trade, 0, len(trades))
	for i := range trades {
		if trades[i].IsClosed() {
			closed = append(closed, trades[i])
		}
	}

	summary := Empty()
	if len(closed) == 0 {
		return summary
	}

	var (
		wins, losses            int
		sumWinR, sumLossR       float64
		largestWin, largestLoss float64
		totalR                  float64
	)
	setups := newGroups[string]()
	sessions := newGroups[string]()
	emotions := newGroups[model.Emotion]()
	setupSnapshots := map[string]model.Setup{}
	sessionSnapshots := map[string]model.Session{}

	for i := range closed {
		t := &closed[i]
		r := t.R()
		totalR += r

		switch t.Result {
		case model.ResultWin:
			if wins == 0 || r > largestWin {
				largestWin = r
			}
			wins++
			sumWinR += r
		case model.ResultLoss:
			if losses == 0 || r < largestLoss {
				largestLoss = r
			}
			losses++
			sumLossR += r
		}

		if t.SetupID != nil && t.Setup != nil {
			key := t.SetupID.String()
			if setups.add(key, t) {
				setupSnapshots[key] = *t.Setup
			}
		}
		if t.SessionID != nil && t.Session != nil {
			key := t.SessionID.String()
			if sessions.add(key, t) {
				sessionSnapshots[key] = *t.Session
			}
		}
		if t.Emotion != nil && *t.Emotion != "" {
			emotions.add(*t.Emotion, t)
		}
	}

	summary.TotalTrades = len(closed)
	summary.TotalR = totalR
	summary.WinRate = percentage(wins, len(closed))
	if wins > 0 {
		summary.AvgWinR = sumWinR / float64(wins)
		summary.LargestWin = largestWin
	}
	if losses > 0 {
		summary.AvgLossR = sumLossR / float64(losses)
		summary.LargestLoss = largestLoss
	}
	// non-wins (breakevens included) carry the loss weight
	summary.Expectancy = (summary.WinRate/100)*summary.AvgWinR + ((100-summary.WinRate)/100)*summary.AvgLossR

	summary.EquityCurve = equityCurve(closed)

	for _, key := range setups.order {
		acc := setups.acc[key]
		summary.BySetup = append(summary.BySetup, SetupPerformance{
			Setup:   setupSnapshots[key],
			Trades:  acc.count,
			WinRate: acc.winRate(),
			AvgR:    acc.avgR(),
			TotalR:  acc.sumR,
		})
	}
	sort.SliceStable(summary.BySetup, func(i, j int) bool {
		return summary.BySetup[i].TotalR > summary.BySetup[j].TotalR
	})

	for _, key := range sessions.order {
		acc := sessions.acc[key]
		summary.BySession = append(summary.BySession, SessionPerformance{
			Session: sessionSnapshots[key],
			Trades:  acc.count,
			WinRate: acc.winRate(),
			AvgR:    acc.avgR(),
			TotalR:  acc.sumR,
		})
	}
	sort.SliceStable(summary.BySession, func(i, j int) bool {
		return summary.BySession[i].TotalR > summary.BySession[j].TotalR
	})

	for _, key := range emotions.order {
		acc := emotions.acc[key]
		summary.ByEmotion = append(summary.ByEmotion, EmotionPerformance{
			Emotion: key,
			Trades:  acc.count,
			WinRate: acc.winRate(),
			AvgR:    acc.avgR(),
		})
	}
	sort.SliceStable(summary.ByEmotion, func(i, j int) bool {
		return summary.ByEmotion[i].AvgR > summary.ByEmotion[j].AvgR
	})

	return summary
}

// equityCurve orders trades by execution time, keeping input order on ties.
func equityCurve(closed []model.Trade) []EquityCurvePoint {
	ordered := make([]model.Trade, len(closed))
	copy(ordered, closed)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExecutedAt().Before(ordered[j].ExecutedAt())
	})

	points := make([]EquityCurvePoint, 0, len(ordered))
	var cumulative float64
	for _, t := range ordered {
		cumulative += t.R()
		points = append(points, EquityCurvePoint{
			Date:        t.TradeDate,
			CumulativeR: cumulative,
			Trade:       t,
		})
	}
	return points
}

type accumulator struct {
	count    int
	winCount int
	sumR     float64
}

func (a *accumulator) winRate() float64 {
	return percentage(a.winCount, a.count)
}

func (a *accumulator) avgR() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sumR / float64(a.count)
}

// groups remembers the order in which keys were first seen.
type groups[K comparable] struct {
	acc   map[K]*accumulator
	order []K
}

func newGroups[K comparable]() *groups[K] {
	return &groups[K]{acc: map[K]*accumulator{}}
}

// add folds t into the group for key and reports whether the key is new.
func (g *groups[K]) add(key K, t *model.Trade) bool {
	acc, ok := g.acc[key]
	if !ok {
		acc = &accumulator{}
		g.acc[key] = acc
		g.order = append(g.order, key)
	}
	acc.count++
	acc.sumR += t.R()
	if t.Result == model.ResultWin {
		acc.winCount++
	}
	return !ok
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
