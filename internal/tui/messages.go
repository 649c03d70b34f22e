package tui

// NavigationMsg is an instruction to navigate to a page.
type NavigationMsg struct {
	Page Kind
}

// InfoMsg is an informational message rendered in the footer.
type InfoMsg string

// ErrorMsg is an error rendered in the footer.
type ErrorMsg struct {
	Error   error
	Message string
	Args    []any
}

func NewErrorMsg(err error, msg string, args ...any) ErrorMsg {
	return ErrorMsg{
		Error:   err,
		Message: msg,
		Args:    args,
	}
}
