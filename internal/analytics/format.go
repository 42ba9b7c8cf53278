package analytics

import (
	"fmt"
	"strings"

	"trading-journal/pkg/utils"
)

// maxRows caps the breakdown lines in a chat message.
const maxRows = 3

// FormatSummary renders a summary as a short plain text report for chat delivery.
func FormatSummary(title string, s Summary) string {
	var b strings.Builder
	b.WriteString("📊 " + title + "\n")

	if s.TotalTrades == 0 {
		b.WriteString("No closed trades yet.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Trades: %d | Win rate: %s\n", s.TotalTrades, utils.FormatPercentage(s.WinRate)))
	b.WriteString(fmt.Sprintf("Total: %s | Expectancy: %s\n", utils.FormatR(s.TotalR), utils.FormatR(s.Expectancy)))
	b.WriteString(fmt.Sprintf("Avg win: %s | Avg loss: %s\n", utils.FormatR(s.AvgWinR), utils.FormatR(s.AvgLossR)))
	b.WriteString(fmt.Sprintf("Best: %s | Worst: %s\n", utils.FormatR(s.LargestWin), utils.FormatR(s.LargestLoss)))

	if len(s.BySetup) > 0 {
		b.WriteString("\nTop setups\n")
		for i, p := range s.BySetup {
			if i == maxRows {
				break
			}
			b.WriteString(fmt.Sprintf("• %s: %s over %d (%s)\n", p.Setup.Name, utils.FormatR(p.TotalR), p.Trades, utils.FormatPercentage(p.WinRate)))
		}
	}
	if len(s.BySession) > 0 {
		b.WriteString("\nTop sessions\n")
		for i, p := range s.BySession {
			if i == maxRows {
				break
			}
			b.WriteString(fmt.Sprintf("• %s: %s over %d (%s)\n", p.Session.Name, utils.FormatR(p.TotalR), p.Trades, utils.FormatPercentage(p.WinRate)))
		}
	}
	if len(s.ByEmotion) > 0 {
		best, worst := s.ByEmotion[0], s.ByEmotion[len(s.ByEmotion)-1]
		b.WriteString(fmt.Sprintf("\nBest mindset: %s (%s avg)\n", best.Emotion, utils.FormatR(best.AvgR)))
		if len(s.ByEmotion) > 1 {
			b.WriteString(fmt.Sprintf("Worst mindset: %s (%s avg)\n", worst.Emotion, utils.FormatR(worst.AvgR)))
		}
	}
	return b.String()
}
