package tree

import "fmt"

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type DuplicateIDError struct {
	ID string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("item already exists: %s", e.ID)
}

type CycleError struct {
	ID       string
	ParentID string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("moving %s under %s would create a cycle", e.ID, e.ParentID)
}
