package generator

// Template is a canned tutorial the simulator can pick.
type Template struct {
	ID          string
	Title       string
	Category    string
	Description string
	Steps       []string
}

// DefaultTemplates is the simulator's catalog.
var DefaultTemplates = []Template{
	{
		ID:          "browser_setup",
		Title:       "Browser Dark Mode Setup",
		Category:    "UI Customization",
		Description: "Learn how to enable dark mode in your web browser",
		Steps: []string{
			"Open your web browser (Chrome, Firefox, Edge, etc.)",
			"Click the three-dot menu icon in the top-right corner",
			"Select 'Settings' from the dropdown menu",
			"Navigate to 'Appearance' or 'Themes' section",
			"Find the 'Dark mode' toggle switch",
			"Enable dark mode by toggling the switch",
			"Close settings and refresh your tabs",
			"Enjoy the new dark theme interface",
		},
	},
	{
		ID:          "file_organization",
		Title:       "File Organization System",
		Category:    "Productivity",
		Description: "Create an efficient file organization system",
		Steps: []string{
			"Open File Explorer from your taskbar",
			"Navigate to your Documents folder",
			"Create a new folder named 'Sorted_Projects'",
			"Inside, create subfolders: 'Work', 'Personal', 'Archive'",
			"Select multiple files by holding Ctrl key",
			"Drag and drop files into appropriate folders",
			"Use descriptive names for easy searching",
			"Right-click main folder and 'Pin to Quick Access'",
		},
	},
	{
		ID:          "software_install",
		Title:       "Software Installation Guide",
		Category:    "Setup",
		Description: "Step-by-step software installation process",
		Steps: []string{
			"Visit the official website of the software",
			"Click the 'Download' button for your OS",
			"Run the downloaded installer file",
			"Accept the license agreement terms",
			"Choose installation directory location",
			"Select additional components if needed",
			"Click 'Install' and wait for completion",
			"Launch the software from Start Menu",
		},
	},
}
