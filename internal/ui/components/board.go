package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/slayken/slayken/internal/account"
	"github.com/slayken/slayken/internal/missions"
	"github.com/slayken/slayken/internal/ui/theme"
)

// AccountCard renders the level badge and the XP bar.
func AccountCard(st account.State, width int) string {
	header := theme.LevelBadge.Render(fmt.Sprintf("Level %d", st.Level)) + "  " +
		theme.Subtitle.Render(fmt.Sprintf("%d / %d XP", st.XP, st.NextLevelXP))
	bar := NewProgressBar("", st.Progress, true, width).View()
	return theme.Card.Render(header + "\n" + bar)
}

// MissionBoard renders missions grouped by category in catalog order.
func MissionBoard(rows []missions.Status, width int) string {
	var sections []string
	for _, cat := range missions.AllCategories() {
		var lines []string
		for _, row := range rows {
			if row.Mission.Category == cat {
				lines = append(lines, missionLine(row, width))
			}
		}
		if len(lines) == 0 {
			continue
		}
		sections = append(sections,
			theme.Title.Render(cat.DisplayName())+"\n"+strings.Join(lines, "\n"))
	}
	if len(sections) == 0 {
		return theme.Hint.Render("No missions available.")
	}
	return strings.Join(sections, "\n\n")
}

func missionLine(row missions.Status, width int) string {
	mark := theme.Pending.Render("○")
	title := theme.Pending.Render(row.Mission.Title)
	if row.Completed {
		mark = theme.Done.Render("✓")
		title = theme.Done.Render(row.Mission.Title)
	}
	count := theme.Subtitle.Render(fmt.Sprintf("%d/%d", min(row.Progress, row.Mission.Target), row.Mission.Target))
	reward := theme.Reward.Render(fmt.Sprintf("+%d XP", row.Mission.XPReward))

	left := mark + " " + title
	pad := max(width/2-lipgloss.Width(left), 1)
	bar := NewProgressBar("", row.Fraction(), false, max(width/4, 4)).View()
	return left + strings.Repeat(" ", pad) + bar + "  " + count + "  " + reward
}

// Awards renders the completions and level-ups of one dispatch.
func Awards(awards []missions.Award, levels []account.LevelChanged) string {
	var lines []string
	for _, a := range awards {
		lines = append(lines, theme.Done.Render("Mission complete: ")+
			theme.Body.Render(a.Title)+"  "+theme.Reward.Render(fmt.Sprintf("+%d XP", a.XP)))
	}
	for _, l := range levels {
		lines = append(lines, theme.LevelBadge.Render(fmt.Sprintf("Level up! You reached level %d", l.Level)))
	}
	if len(lines) == 0 {
		return theme.Hint.Render("No missions completed.")
	}
	return strings.Join(lines, "\n")
}
