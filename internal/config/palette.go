package config

import "github.com/dshills/ptyterm/internal/ansicolor"

// BuildPalette seeds a default palette and applies every override this
// theme config names, by index for Indexed and by canonical name (see
// namedIndexOrder) for Named. Assumes Validate has already confirmed
// every hex literal parses.
func (th ThemeConfig) BuildPalette() (*ansicolor.Palette, error) {
	p := ansicolor.NewDefaultPalette()

	if th.Foreground != "" {
		c, err := ansicolor.FromHex(th.Foreground)
		if err != nil {
			return nil, err
		}
		p.SetDefaultForeground(c)
	}
	if th.Background != "" {
		c, err := ansicolor.FromHex(th.Background)
		if err != nil {
			return nil, err
		}
		p.SetDefaultBackground(c)
	}

	nameToIndex := make(map[string]int, len(namedIndexOrder))
	for i, name := range namedIndexOrder {
		nameToIndex[name] = i
	}
	for name, hex := range th.Named {
		index, ok := nameToIndex[name]
		if !ok {
			continue // unrecognized name: Validate doesn't reject these, so BuildPalette ignores them rather than failing at render time
		}
		c, err := ansicolor.FromHex(hex)
		if err != nil {
			return nil, err
		}
		p.SetNamed(index, c)
	}

	for index, hex := range th.Indexed {
		if index >= 0 && index <= 15 {
			c, err := ansicolor.FromHex(hex)
			if err != nil {
				return nil, err
			}
			p.SetNamed(index, c)
			continue
		}
		// Indices 16..255 override the palette's procedural
		// cube/grayscale ramp one slot at a time.
		c, err := ansicolor.FromHex(hex)
		if err != nil {
			return nil, err
		}
		p.SetIndexed(index, c)
	}

	return p, nil
}
