package resource

import (
	"fmt"

	"github.com/google/uuid"
)

type ID struct {
	id uuid.UUID
	// Kind of resource, e.g. message
	kind Kind
}

func NewID(k Kind) ID {
	return ID{
		id:   uuid.New(),
		kind: k,
	}
}

func (id ID) String() string {
	return fmt.Sprintf("%s-%s", id.kind.String(), id.id.String())
}
