package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background    tcell.Color
	Foreground    tcell.Color
	HeaderBg      tcell.Color
	HeaderFg      tcell.Color
	TabActiveBg   tcell.Color
	TabActiveFg   tcell.Color
	TabInactiveFg tcell.Color
	InputBg       tcell.Color
	InputFg       tcell.Color
	PlaceholderFg tcell.Color
	CounterFg     tcell.Color
	DropdownBg    tcell.Color
	DropdownFg    tcell.Color
	BadgeBg       tcell.Color
	BadgeFg       tcell.Color
	MatchFg       tcell.Color
	SelectionBg   tcell.Color
	SelectionFg   tcell.Color
	MutedFg       tcell.Color
	TitleFg       tcell.Color
	ErrorFg       tcell.Color
	NoticeFg      tcell.Color
	FooterBg      tcell.Color
	FooterFg      tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:    tcell.ColorDefault,
		Foreground:    tcell.ColorDefault,
		HeaderBg:      tcell.Color33,
		HeaderFg:      tcell.ColorWhite,
		TabActiveBg:   tcell.Color33,
		TabActiveFg:   tcell.ColorWhite,
		TabInactiveFg: tcell.ColorLightSlateGray,
		InputBg:       tcell.Color235,
		InputFg:       tcell.ColorDefault,
		PlaceholderFg: tcell.Color244,
		CounterFg:     tcell.Color244,
		DropdownBg:    tcell.Color236,
		DropdownFg:    tcell.Color252,
		BadgeBg:       tcell.Color24,
		BadgeFg:       tcell.ColorWhite,
		MatchFg:       tcell.Color44, // bright cyan for the typed part
		SelectionBg:   tcell.Color33,
		SelectionFg:   tcell.ColorWhite,
		MutedFg:       tcell.ColorLightSlateGray,
		TitleFg:       tcell.Color33,
		ErrorFg:       tcell.Color203,
		NoticeFg:      tcell.Color114,
		FooterBg:      tcell.ColorDefault,
		FooterFg:      tcell.ColorDefault,
	}
}
