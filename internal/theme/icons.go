package theme

// Directory and tree icons
const (
	IconDirCollapsed = "▸"
	IconDirExpanded  = "▾"
	IconFile         = ""
	IconFileModified = "●"
)

// Tree connector characters
const (
	TreeBranch     = "├── "
	TreeLastBranch = "└── "
	TreeVertical   = "│   "
	TreeSpace      = "    "
)

// Git status badges
const (
	GitModified  = "[M]"
	GitAdded     = "[+]"
	GitDeleted   = "[D]"
	GitUntracked = "[?]"
	GitConflict  = "[!]"
	GitRenamed   = "[R]"
)

// Git branch decorations
const (
	GitBranchIcon = ""
	GitAhead      = "↑"
	GitBehind     = "↓"
	GitDirty      = "*"
)

// Status indicators
const (
	StatusRunning = "●"
	StatusIdle    = "○"
)

// PanelDiamond decorates standalone titles.
const PanelDiamond = "◆"

// SpinnerDots are the frames for loading animations.
var SpinnerDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// FileIcons maps file extensions to Nerd Font icons.
var FileIcons = map[string]string{
	".go":  "󰟓",
	".mod": "󰏗",
	".sum": "󰏗",

	".js":   "",
	".ts":   "",
	".tsx":  "",
	".jsx":  "",
	".html": "",
	".css":  "",
	".vue":  "",

	".json":  "",
	".yaml":  "",
	".yml":   "",
	".toml":  "",
	".xml":   "",
	".sql":   "",
	".proto": "",
	".lock":  "",

	".md":  "󰍔",
	".mdx": "󰍔",
	".txt": "",

	".env":       "󰈙",
	".gitignore": "",

	".sh":   "",
	".bash": "",
	".zsh":  "",

	".py": "",
	".rs": "",
	".c":  "",
	".h":  "",
	".rb": "",

	"Dockerfile": "",
	"Makefile":   "",

	".png":  "",
	".jpg":  "",
	".jpeg": "",
	".gif":  "",
	".svg":  "",

	".zip": "",
	".tar": "",
	".gz":  "",

	"": "",
}

// DirIcons maps well-known directory names to Nerd Font icons.
var DirIcons = map[string]string{
	".git":         "",
	"node_modules": "",
	"vendor":       "",
	"src":          "",
	"pkg":          "",
	"cmd":          "",
	"internal":     "",
	"test":         "",
	"tests":        "",
	"testdata":     "",
	"docs":         "",
	"dist":         "",
	"bin":          "",
	"config":       "",
	".config":      "",
	".github":      "",
	".podex":       "",
}

// GetFileIcon returns the icon for a file extension, falling back to the
// generic file icon.
func GetFileIcon(ext string) string {
	if icon, ok := FileIcons[ext]; ok {
		return icon
	}
	return FileIcons[""]
}

// GetDirIcon returns the icon for a well-known directory name, or empty.
func GetDirIcon(name string) string {
	return DirIcons[name]
}
