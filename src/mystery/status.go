package mystery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/divan/num2words"
	"github.com/olekukonko/tablewriter"

	"github.com/moonlitmotel/chadbot/src/brain"
)

// StatusSummary renders the guild's mystery standing for the /mystery
// slash command.
func (e *Engine) StatusSummary(guildID string) string {
	e.tracker.mu.Lock()
	defer e.tracker.mu.Unlock()

	p := e.tracker.guild(guildID)

	gate, progress := "-", "-"
	if g := p.gate(p.Stage); g != nil {
		gate = string(g.Kind)
		switch g.Kind {
		case brain.GateConfession:
			progress = fmt.Sprintf("%d/%d", len(g.Confessors), confessionThreshold)
		case brain.GateAlternating:
			progress = fmt.Sprintf("%d/%d", len(g.Sequence), alternatingLength)
		case brain.GatePair:
			done := 0
			if g.ApologyBy != "" {
				done++
			}
			if g.ForgivenessBy != "" {
				done++
			}
			progress = fmt.Sprintf("%d/2", done)
		case brain.GatePoll:
			if g.Closed {
				progress = "closed"
			} else {
				progress = "open"
			}
		}
	}

	var builder strings.Builder
	table := tablewriter.NewWriter(&builder)
	table.SetHeader([]string{"Stage", "Gate", "Progress", "Guests"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{
		strconv.Itoa(p.Stage),
		gate,
		progress,
		strconv.Itoa(len(p.Participants)),
	})
	table.Render()

	return fmt.Sprintf("```\n%s```\n%s guests have touched the mystery so far.",
		builder.String(), num2words.Convert(len(p.Participants)))
}
