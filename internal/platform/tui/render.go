package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/antfarm/internal/combat"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

var terrainColors = map[world.Terrain]core.Color{
	world.TerrainBedrock: core.ColorGray,
	world.TerrainDirt:    core.ColorOrange,
	world.TerrainStone:   core.ColorWhite,
	world.TerrainTunnel:  core.ColorYellow,
	world.TerrainChamber: core.ColorBrightYellow,
	world.TerrainSurface: core.ColorGreen,
}

var castGlyphs = map[world.Cast]rune{
	world.CastQueen:   'Q',
	world.CastWorker:  'w',
	world.CastWarrior: 'W',
	world.CastLarva:   'l',
}

// CellWidth is the number of screen columns one hex cell takes.
const CellWidth = 2

// CellOrigin returns the screen position of a hex cell drawn at (x0, y0).
// Odd rows are shifted half a cell right.
func CellOrigin(c core.Coord, x0, y0 int) (int, int) {
	return x0 + c.X*CellWidth + (c.Y & 1), y0 + c.Y
}

// DrawWorld draws the terrain, food, eggs and living ant stacks of w.
// Ants are drawn over eggs, eggs over food.
func DrawWorld(s *core.Screen, w *world.State, x0, y0 int) {
	for y, row := range w.Terrain {
		for x, t := range row {
			sx, sy := CellOrigin(core.C(x, y), x0, y0)
			s.SetColored(sx, sy, t.Glyph(), terrainColors[t])
		}
	}

	for _, f := range w.Food {
		sx, sy := CellOrigin(f.Location, x0, y0)
		s.SetColored(sx, sy, '*', core.ColorBrightGreen)
		s.SetColored(sx+1, sy, countRune(f.Value), core.ColorBrightGreen)
	}

	for _, c := range w.Colonies {
		color := core.ParseColor(c.AntColor)
		for _, e := range c.Eggs {
			sx, sy := CellOrigin(e.Location, x0, y0)
			s.SetColored(sx, sy, 'e', color)
			s.SetColored(sx+1, sy, countRune(e.NumberOfEggs), color)
		}
	}

	for _, c := range w.Colonies {
		color := core.ParseColor(c.AntColor)
		for _, a := range c.Ants {
			if a.NumberOfAnts <= 0 {
				continue
			}
			sx, sy := CellOrigin(a.Location, x0, y0)
			glyph, ok := castGlyphs[a.Cast]
			if !ok {
				glyph = '?'
			}
			s.SetColored(sx, sy, glyph, color)
			s.SetColored(sx+1, sy, countRune(a.NumberOfAnts), color)
		}
	}
}

// countRune returns a single digit for small counts and '+' above nine.
func countRune(n int) rune {
	if n >= 0 && n <= 9 {
		return rune('0' + n)
	}
	return '+'
}

// DrawSeparator rules off row y across the full screen width.
func DrawSeparator(s *core.Screen, y int) {
	s.DrawHLine(0, y, s.Width(), '─')
}

// DrawStatus writes the turn, position and colony summary lines starting at row y.
// It returns the next free row.
func DrawStatus(s *core.Screen, w *world.State, pos turn.Position, y int) int {
	s.DrawText(0, y, fmt.Sprintf("Turn %d  stage %2d/%d  %s", w.Turn, pos.Stage, turn.FinalStage, pos.Substage))
	y++
	for ci, c := range w.Colonies {
		ants := 0
		for _, a := range c.Ants {
			if a.NumberOfAnts > 0 {
				ants += a.NumberOfAnts
			}
		}
		eggs := 0
		for _, e := range c.Eggs {
			eggs += e.NumberOfEggs
		}
		line := fmt.Sprintf("colony %d: %3d ants  %2d eggs  food %3d", ci, ants, eggs, c.FoodSupply)
		s.DrawTextColored(0, y, line, core.ParseColor(c.AntColor))
		y++
	}
	return y
}

// DrawInteractions lists the losses of one combat round starting at row y.
func DrawInteractions(s *core.Screen, w *world.State, ints []combat.Interaction, y int) int {
	for _, in := range ints {
		color := core.ColorDefault
		if in.Colony >= 0 && in.Colony < len(w.Colonies) {
			color = core.ParseColor(w.Colonies[in.Colony].AntColor)
		}
		s.DrawTextColored(0, y, fmt.Sprintf("colony %d stack %d lost %d", in.Colony, in.Ant, in.NumberLost), color)
		y++
	}
	return y
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text
}
