package levels

// Theme describes the look of a world.
type Theme struct {
	ID          int
	Name        string
	Underground bool
}

var themes = []Theme{
	{ID: 1, Name: "GRASS LAND"},
	{ID: 2, Name: "DESERT HILL"},
	{ID: 3, Name: "OCEAN SIDE"},
	{ID: 4, Name: "GIANT LAND"},
	{ID: 5, Name: "SKY WORLD"},
	{ID: 6, Name: "ICE WORLD"},
	{ID: 7, Name: "PIPE MAZE"},
	{ID: 8, Name: "DARK LAND"},
}

// Underground levels reuse the world theme with a dark palette.
const undergroundOffset = 100

// ThemeByID returns the theme for an id, falling back to GRASS LAND.
// Ids above 100 are the underground variant of the world id minus 100.
func ThemeByID(id int) Theme {
	under := false
	if id > undergroundOffset {
		id -= undergroundOffset
		under = true
	}
	if id < 1 || id > len(themes) {
		id = 1
	}
	t := themes[id-1]
	t.Underground = under
	return t
}

// Themes returns every world theme in order.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}
