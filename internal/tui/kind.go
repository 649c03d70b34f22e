package tui

// Kind identifies a kind of page.
type Kind int

const (
	BookKind Kind = iota
	GuestbookKind
	LogsKind
)

func (k Kind) String() string {
	switch k {
	case BookKind:
		return "book"
	case GuestbookKind:
		return "guestbook"
	case LogsKind:
		return "logs"
	default:
		return "unknown"
	}
}
