package skills

// DisplayType selects how the UI renders a skill's visual output.
type DisplayType string

const (
	DisplayNone    DisplayType = "none"
	DisplayInfo    DisplayType = "info"
	DisplayList    DisplayType = "list"
	DisplayError   DisplayType = "error"
	DisplayWarning DisplayType = "warning"
)

// Reply is the standardized skill output: a spoken message plus an optional
// visual display block. It is also the POST /api/command response shape.
type Reply struct {
	OK               bool        `json:"ok"`
	Message          string      `json:"message"`
	DisplayType      DisplayType `json:"display_type"`
	DisplayData      any         `json:"display_data,omitempty"`
	AutoCloseSeconds int         `json:"auto_close_seconds,omitempty"`
}

// Said builds a plain spoken reply with no visual display.
func Said(message string) Reply {
	return Reply{OK: true, Message: message, DisplayType: DisplayNone}
}

// InfoReply builds a reply with an information window.
func InfoReply(message string, data any) Reply {
	return Reply{OK: true, Message: message, DisplayType: DisplayInfo, DisplayData: data, AutoCloseSeconds: 10}
}

// ListReply builds a reply with a scrollable list display.
func ListReply(message string, items any) Reply {
	return Reply{OK: true, Message: message, DisplayType: DisplayList, DisplayData: items}
}

// ErrorReply builds a failed reply with an error dialog.
func ErrorReply(message string) Reply {
	return Reply{OK: false, Message: message, DisplayType: DisplayError}
}
