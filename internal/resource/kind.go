package resource

type Kind int

const (
	Message Kind = iota
)

func (k Kind) String() string {
	return [...]string{
		"msg",
	}[k]
}
