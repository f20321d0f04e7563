package utils

// Embed colours, from https://coolors.co/d4e4bc-d33f49-2176ae-ff8811-ffcfd2
const (
	colorTeaGreen     = 0xd4e4bc
	colorHonoluluBlue = 0x2176ae
	colorTeaRose      = 0xffcfd2
	colorRustyRed     = 0xd33f49
	colorOrange       = 0xff8811
)

type palette struct{}

// Colors is the embed palette shared by every command.
var Colors palette

// Ok is for confirmations.
func (palette) Ok() int { return colorTeaGreen }

// Info is for lookups and listings.
func (palette) Info() int { return colorHonoluluBlue }

// Fancy is for pagination menus and reminders.
func (palette) Fancy() int { return colorTeaRose }

// Error is for failures.
func (palette) Error() int { return colorRustyRed }

// Warning is for results that need the user's attention.
func (palette) Warning() int { return colorOrange }
