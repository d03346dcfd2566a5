package styles

import "github.com/charmbracelet/lipgloss"

// Oxocarbon color scheme - IBM Carbon inspired
var (
	Black  = lipgloss.Color("#161616")
	Base00 = lipgloss.Color("#262626")
	Base01 = lipgloss.Color("#393939")
	Base02 = lipgloss.Color("#525252")
	Base03 = lipgloss.Color("#767676")
	Base04 = lipgloss.Color("#dde1e6")
	Base05 = lipgloss.Color("#f2f4f8")
	White  = lipgloss.Color("#ffffff")

	Teal    = lipgloss.Color("#3ddbd9")
	Blue    = lipgloss.Color("#78a9ff")
	Pink    = lipgloss.Color("#ee5396")
	Red     = lipgloss.Color("#ff5252")
	Cyan    = lipgloss.Color("#33b1ff")
	Magenta = lipgloss.Color("#ff7eb6")
	Green   = lipgloss.Color("#42be65")
	Purple  = lipgloss.Color("#be95ff") // main accent
	Mauve   = lipgloss.Color("#d1aaff")
)

var (
	AppStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Base01)

	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Purple).
			Padding(0, 1).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Mauve).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Base03).
			Italic(true)

	// Left-bordered list rows, selected row gets the accent border
	ItemStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Base02).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			PaddingLeft(2).
			PaddingRight(2).
			MarginLeft(1)

	SelectedItemStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(Purple).
				BorderLeft(true).
				BorderTop(false).
				BorderRight(false).
				BorderBottom(false).
				PaddingLeft(2).
				PaddingRight(2).
				MarginLeft(1)

	ItemTitleStyle = lipgloss.NewStyle().
			Foreground(Base05).
			Bold(true)

	MetadataStyle = lipgloss.NewStyle().
			Foreground(Base04)

	URLStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true).
			Underline(true).
			MarginBottom(1).
			MarginTop(1)

	// Badges for server properties
	RecommendedBadgeStyle = lipgloss.NewStyle().
				Foreground(Green).
				Bold(true)

	AdsBadgeStyle = lipgloss.NewStyle().
			Foreground(Pink)

	LockedBadgeStyle = lipgloss.NewStyle().
				Foreground(Red).
				Bold(true)

	SandboxBadgeStyle = lipgloss.NewStyle().
				Foreground(Teal)

	SynopsisStyle = lipgloss.NewStyle().
			Foreground(Base04).
			Italic(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(Base05).
			Background(Base01).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	PopupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Purple).
			Padding(1, 2).
			Background(Base00).
			Foreground(Base05)

	// Controls overlay shown over the player in fullscreen
	ControlsOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Base02).
				Background(Base00).
				Foreground(Base05).
				Padding(0, 2)
)
